package storage

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/neelabalan/growatt-dashboard/pkg/models"
)

// InfluxSink writes samples as InfluxDB points: measurement power/energy,
// tag plant_id, field watt/kilowatt_hours. Re-written samples overwrite
// the existing point for the same series and timestamp.
type InfluxSink struct {
	client influxdb2.Client
	write  api.WriteAPIBlocking
}

// NewInfluxSink creates a sink writing to the given org and bucket
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	client := influxdb2.NewClient(url, token)
	return &InfluxSink{
		client: client,
		write:  client.WriteAPIBlocking(org, bucket),
	}
}

func (s *InfluxSink) WritePower(ctx context.Context, plantID string, samples []models.PowerSample) error {
	for _, sample := range samples {
		point := influxdb2.NewPoint(
			"power",
			map[string]string{"plant_id": plantID},
			map[string]interface{}{"watt": sample.Watts},
			sample.Time,
		)
		if err := s.write.WritePoint(ctx, point); err != nil {
			return fmt.Errorf("writing power point: %w", err)
		}
	}
	return nil
}

func (s *InfluxSink) WriteEnergy(ctx context.Context, plantID string, samples []models.EnergySample) error {
	for _, sample := range samples {
		point := influxdb2.NewPoint(
			"energy",
			map[string]string{"plant_id": plantID},
			map[string]interface{}{"kilowatt_hours": sample.KilowattHours},
			sample.Time,
		)
		if err := s.write.WritePoint(ctx, point); err != nil {
			return fmt.Errorf("writing energy point: %w", err)
		}
	}
	return nil
}

func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}
