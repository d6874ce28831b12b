package observability

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

const metricNamespace = "RefData/Cache"

// flushInterval bounds how long a datapoint sits in the buffer before
// it is pushed to CloudWatch.
const flushInterval = 30 * time.Second

// maxBatchSize is the PutMetricData limit per request
const maxBatchSize = 20

// CloudWatchMetrics buffers counters and durations and flushes them to
// CloudWatch in the background. Publishing is best effort; a failed
// flush is logged and dropped.
type CloudWatchMetrics struct {
	client *cloudwatch.Client
	logger *zap.Logger

	mu     sync.Mutex
	buffer []types.MetricDatum

	done chan struct{}
	once sync.Once
}

// NewCloudWatchMetrics creates a metrics publisher and starts its flush loop
func NewCloudWatchMetrics(client *cloudwatch.Client, logger *zap.Logger) *CloudWatchMetrics {
	m := &CloudWatchMetrics{
		client: client,
		logger: logger,
		done:   make(chan struct{}),
	}
	go m.flushLoop()
	return m
}

// IncrementCounter records a count-of-one datapoint
func (m *CloudWatchMetrics) IncrementCounter(name string, dimensions map[string]string) {
	m.append(types.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(1),
		Unit:       types.StandardUnitCount,
		Timestamp:  aws.Time(time.Now()),
		Dimensions: toDimensions(dimensions),
	})
}

// RecordDuration records a latency datapoint in milliseconds
func (m *CloudWatchMetrics) RecordDuration(name string, d time.Duration, dimensions map[string]string) {
	m.append(types.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(float64(d.Milliseconds())),
		Unit:       types.StandardUnitMilliseconds,
		Timestamp:  aws.Time(time.Now()),
		Dimensions: toDimensions(dimensions),
	})
}

// Close flushes pending datapoints and stops the flush loop
func (m *CloudWatchMetrics) Close() {
	m.once.Do(func() {
		close(m.done)
		m.flush()
	})
}

func (m *CloudWatchMetrics) append(datum types.MetricDatum) {
	m.mu.Lock()
	m.buffer = append(m.buffer, datum)
	full := len(m.buffer) >= maxBatchSize
	m.mu.Unlock()

	if full {
		m.flush()
	}
}

func (m *CloudWatchMetrics) flushLoop() {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.flush()
		case <-m.done:
			return
		}
	}
}

func (m *CloudWatchMetrics) flush() {
	m.mu.Lock()
	if len(m.buffer) == 0 {
		m.mu.Unlock()
		return
	}
	batch := m.buffer
	m.buffer = nil
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for start := 0; start < len(batch); start += maxBatchSize {
		end := min(start+maxBatchSize, len(batch))
		_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(metricNamespace),
			MetricData: batch[start:end],
		})
		if err != nil {
			m.logger.Warn("Failed to publish metrics", zap.Error(err), zap.Int("datapoints", end-start))
		}
	}
}

func toDimensions(dimensions map[string]string) []types.Dimension {
	if len(dimensions) == 0 {
		return nil
	}
	out := make([]types.Dimension, 0, len(dimensions))
	for name, value := range dimensions {
		out = append(out, types.Dimension{
			Name:  aws.String(name),
			Value: aws.String(value),
		})
	}
	return out
}

// NoopMetrics discards every datapoint, used when metrics are disabled
type NoopMetrics struct{}

func (NoopMetrics) IncrementCounter(string, map[string]string)              {}
func (NoopMetrics) RecordDuration(string, time.Duration, map[string]string) {}
