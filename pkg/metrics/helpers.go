package metrics

import "time"

func RecordCacheHit(service, keyPrefix string) {
	RedisCacheHits.WithLabelValues(service, keyPrefix).Inc()
}

func RecordCacheMiss(service, keyPrefix string) {
	RedisCacheMisses.WithLabelValues(service, keyPrefix).Inc()
}

func RecordRedisError(service, operation string) {
	RedisErrors.WithLabelValues(service, operation).Inc()
}

func RecordKafkaMessageProduced(service, topic string) {
	KafkaMessagesProduced.WithLabelValues(service, topic).Inc()
}

func RecordKafkaError(service, topic, operation string) {
	KafkaErrors.WithLabelValues(service, topic, operation).Inc()
}

func RecordDbError(service, operation string) {
	DbErrors.WithLabelValues(service, operation).Inc()
}

// DbTimer замеряет длительность запроса к БД
type DbTimer struct {
	service   string
	operation string
	table     string
	start     time.Time
}

func NewDbTimer(service, operation, table string) *DbTimer {
	return &DbTimer{
		service:   service,
		operation: operation,
		table:     table,
		start:     time.Now(),
	}
}

func (dt *DbTimer) ObserveDuration() {
	DbQueryDuration.WithLabelValues(dt.service, dt.operation, dt.table).Observe(time.Since(dt.start).Seconds())
}
