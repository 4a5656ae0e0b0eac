package eventstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_BuildStorableEvent_ErrorCases(t *testing.T) {
	validPayloadJSON := []byte(`{"ItemID": "item-1"}`)
	validMetadataJSON := []byte(`{"MessageID": "m-1"}`)

	tests := []struct {
		name         string
		payloadJSON  []byte
		metadataJSON []byte
		expectedErr  error
	}{
		{
			name:         "invalid payload JSON",
			payloadJSON:  []byte(`{"invalid": json}`),
			metadataJSON: validMetadataJSON,
			expectedErr:  ErrInvalidPayloadJSON,
		},
		{
			name:         "invalid metadata JSON",
			payloadJSON:  validPayloadJSON,
			metadataJSON: []byte(`{"invalid": json}`),
			expectedErr:  ErrInvalidMetadataJSON,
		},
		{
			name:         "empty payload JSON",
			payloadJSON:  []byte(``),
			metadataJSON: validMetadataJSON,
			expectedErr:  ErrInvalidPayloadJSON,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// act
			_, err := BuildStorableEvent("ItemReturned", time.Now(), tc.payloadJSON, tc.metadataJSON)

			// assert
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func Test_BuildStorableEvent_Success(t *testing.T) {
	// arrange
	occurredAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	payloadJSON := []byte(`{"ItemID": "item-1"}`)

	// act
	event, err := BuildStorableEventWithEmptyMetadata("ItemReturned", occurredAt, payloadJSON)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "ItemReturned", event.EventType)
	assert.Equal(t, occurredAt, event.OccurredAt)
	assert.Equal(t, payloadJSON, event.PayloadJSON)
	assert.Equal(t, []byte("{}"), event.MetadataJSON)
}
