package waveheight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"wave-stack/internal/models"
	"wave-stack/shared/config"
)

var (
	ErrSourceUnavailable = errors.New("telemetry source unavailable")
	ErrMalformedResponse = errors.New("malformed telemetry response")
)

const boatDataQuery = `
{
  data {
    timestamp
    accel_z
    accel_x
    accel_y
    boat_id
    latitude
    longitude
  }
}
`

// TelemetryClient fetches boat telemetry from the TAF GraphQL endpoint
type TelemetryClient struct {
	config   *config.TelemetryConfig
	client   *http.Client
	location *time.Location
}

// graphQLResponse is the envelope returned by /graphql/{table}
type graphQLResponse struct {
	Data *struct {
		Data *[]models.TelemetryRecord `json:"data"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// NewTelemetryClient creates a client. Zoneless timestamps are read in loc.
func NewTelemetryClient(cfg *config.TelemetryConfig, loc *time.Location) *TelemetryClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if loc == nil {
		loc = time.Local
	}

	return &TelemetryClient{
		config:   cfg,
		location: loc,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Endpoint returns the GraphQL URL for the configured table. The server
// address may be given bare ("10.0.0.5:5000") or with a scheme.
func (c *TelemetryClient) Endpoint() string {
	base := strings.TrimRight(c.config.ServerIP, "/")
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return fmt.Sprintf("%s/graphql/%s", base, c.config.Table)
}

// FetchRecords posts the boat_data query and returns the raw records
func (c *TelemetryClient) FetchRecords(ctx context.Context) ([]models.TelemetryRecord, error) {
	body, err := json.Marshal(map[string]string{"query": boatDataQuery})
	if err != nil {
		return nil, fmt.Errorf("failed to encode telemetry query: %w", err)
	}

	url := c.Endpoint()
	log.Printf("Fetching telemetry from: %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrSourceUnavailable, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var envelope graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if len(envelope.Errors) > 0 {
		messages := make([]string, len(envelope.Errors))
		for i, e := range envelope.Errors {
			messages[i] = e.Message
		}
		return nil, fmt.Errorf("%w: graphql errors: %s", ErrSourceUnavailable, strings.Join(messages, "; "))
	}

	if envelope.Data == nil || envelope.Data.Data == nil {
		return nil, fmt.Errorf("%w: missing data.data", ErrMalformedResponse)
	}

	return *envelope.Data.Data, nil
}

// FetchSamples fetches and parses all records. The first unparseable record
// fails the whole batch.
func (c *TelemetryClient) FetchSamples(ctx context.Context) ([]models.Sample, error) {
	records, err := c.FetchRecords(ctx)
	if err != nil {
		return nil, err
	}

	samples := make([]models.Sample, len(records))
	for i, rec := range records {
		s, err := ParseRecord(rec, c.location)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		samples[i] = s
	}

	return samples, nil
}

// ParseRecord converts a raw record into a Sample. accel_x and accel_y are
// not used downstream but must still be numeric.
func ParseRecord(rec models.TelemetryRecord, loc *time.Location) (models.Sample, error) {
	ts, err := parseTimestamp(rec.Timestamp, loc)
	if err != nil {
		return models.Sample{}, fmt.Errorf("%w: timestamp %q: %v", ErrMalformedSample, rec.Timestamp, err)
	}

	sample := models.Sample{
		Timestamp: ts,
		BoatID:    rec.BoatID.String(),
	}

	fields := []struct {
		name  string
		value models.Field
		dst   *float64
	}{
		{name: "accel_x", value: rec.AccelX},
		{name: "accel_y", value: rec.AccelY},
		{name: "accel_z", value: rec.AccelZ, dst: &sample.VerticalAcceleration},
		{name: "latitude", value: rec.Latitude, dst: &sample.Latitude},
		{name: "longitude", value: rec.Longitude, dst: &sample.Longitude},
	}

	for _, f := range fields {
		v, err := f.value.Float64()
		if err != nil {
			return models.Sample{}, fmt.Errorf("%w: %s: %v", ErrMalformedSample, f.name, err)
		}
		if f.dst != nil {
			*f.dst = v
		}
	}

	return sample, nil
}
