package service

import (
	"errors"
	"testing"

	"balance_checker/internal/models"
)

func TestClassifyLookup(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		res         models.LookupResult
		err         error
		wantValue   string
		wantComment string
		wantType    string
	}{
		{
			name:        "success persists amount with empty comment",
			res:         models.LookupResult{Outcome: models.OutcomeSuccess, Amount: "1.5"},
			wantValue:   "1.5",
			wantComment: "",
			wantType:    models.EventChecked,
		},
		{
			name:        "empty result persists zero with remote message",
			res:         models.LookupResult{Outcome: models.OutcomeEmpty, Amount: "0", Message: "No transactions found"},
			wantValue:   "0",
			wantComment: "No transactions found",
			wantType:    models.EventChecked,
		},
		{
			name:        "transient error writes sentinel and error comment",
			err:         errors.New("connection reset"),
			wantValue:   SentinelValue,
			wantComment: "Error: connection reset",
			wantType:    models.EventCheckFailed,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			wb := classifyLookup(tc.res, tc.err)
			if wb.fields["Value"] != tc.wantValue {
				t.Errorf("Value: want %q, got %v", tc.wantValue, wb.fields["Value"])
			}
			if wb.fields["Comment"] != tc.wantComment {
				t.Errorf("Comment: want %q, got %v", tc.wantComment, wb.fields["Comment"])
			}
			if wb.eventType != tc.wantType {
				t.Errorf("eventType: want %q, got %q", tc.wantType, wb.eventType)
			}
		})
	}
}
