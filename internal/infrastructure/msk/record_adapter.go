package msk

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"

	"github.com/aws/aws-lambda-go/events"
	"github.com/example/order-fulfillment/internal/infrastructure/kafka"
)

// ConvertFromKafkaRecord decodes the base64 key and value of an MSK event
// record.
func ConvertFromKafkaRecord(record events.KafkaRecord) (key, value []byte, err error) {
	if record.Key != "" {
		key, err = base64.StdEncoding.DecodeString(record.Key)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode key: %w", err)
		}
	}
	value, err = base64.StdEncoding.DecodeString(record.Value)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode value: %w", err)
	}
	return key, value, nil
}

// SortedRecords flattens the event into partition then offset order.
func SortedRecords(event events.KafkaEvent) []events.KafkaRecord {
	var records []events.KafkaRecord
	for _, batch := range event.Records {
		records = append(records, batch...)
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Topic != records[j].Topic {
			return records[i].Topic < records[j].Topic
		}
		if records[i].Partition != records[j].Partition {
			return records[i].Partition < records[j].Partition
		}
		return records[i].Offset < records[j].Offset
	})
	return records
}

// Dispatch feeds every record to handler in order and stops at the first
// failure. An error makes Lambda redeliver the whole batch, so records that
// were already handled are seen again.
func Dispatch(ctx context.Context, event events.KafkaEvent, handler kafka.MessageHandler) (int, error) {
	handled := 0
	for _, record := range SortedRecords(event) {
		key, value, err := ConvertFromKafkaRecord(record)
		if err != nil {
			return handled, fmt.Errorf("record %s-%d@%d: %w", record.Topic, record.Partition, record.Offset, err)
		}
		if err := handler(ctx, key, value); err != nil {
			return handled, fmt.Errorf("record %s-%d@%d: %w", record.Topic, record.Partition, record.Offset, err)
		}
		handled++
	}
	return handled, nil
}
