package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateOrder     OutboxAggregateType = "order"
	AggregateOrderItem OutboxAggregateType = "order_item"
	AggregateCampaign  OutboxAggregateType = "campaign"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateOrderItem,
	AggregateCampaign,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventOrderCreated       OutboxEventType = "order_created"
	EventOrderSubmitted     OutboxEventType = "order_submitted"
	EventOrderItemsDeleted  OutboxEventType = "order_items_deleted"
	EventOrderItemsInserted OutboxEventType = "order_items_inserted"
	EventCampaignEnded      OutboxEventType = "campaign_ended"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderCreated,
	EventOrderSubmitted,
	EventOrderItemsDeleted,
	EventOrderItemsInserted,
	EventCampaignEnded,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}

// IsOrderItemEvent reports whether the event mutates order_items rows and is
// therefore relevant to campaign aggregation feeds.
func (e OutboxEventType) IsOrderItemEvent() bool {
	return e == EventOrderItemsDeleted || e == EventOrderItemsInserted
}
