package kafka_config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load([]string{"localhost:9092"}, "hirfa.domain-events")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DLQTopic != "hirfa.domain-events.dlq" {
		t.Errorf("DLQTopic = %q", cfg.DLQTopic)
	}
	if cfg.ConsumerStartOffset != -2 {
		t.Errorf("ConsumerStartOffset = %d", cfg.ConsumerStartOffset)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv(EnvKafkaProducerCompression, "LZ4")
	t.Setenv(EnvKafkaConsumerMaxRetries, "5")

	cfg, err := Load([]string{"localhost:9092"}, "events")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ProducerCompression != "lz4" || cfg.ConsumerMaxRetries != 5 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		brokers []string
		wantErr string
	}{
		{"no brokers", nil, nil, "At least one Kafka broker"},
		{"bad compression", map[string]string{EnvKafkaProducerCompression: "brotli"}, []string{"b:9092"}, "ProducerCompression"},
		{"bad acks", map[string]string{EnvKafkaProducerRequireAcks: "2"}, []string{"b:9092"}, "ProducerRequireAcks"},
		{"bad offset", map[string]string{EnvKafkaConsumerStartOffset: "7"}, []string{"b:9092"}, "ConsumerStartOffset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(tt.brokers, "events")
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected %q, got %v", tt.wantErr, err)
			}
		})
	}
}
