package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakePrices struct {
	prices map[string]float64
	err    error
}

func (f *fakePrices) GetListingPrice(_ context.Context, listingID string) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.prices[listingID], nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// tuesdayAt returns a fixed weekday instant at the given hour and minute.
func tuesdayAt(hour, minute int) time.Time {
	return time.Date(2026, time.March, 3, hour, minute, 0, 0, time.UTC)
}

func TestEvaluateComparisons(t *testing.T) {
	e := NewEvaluator(nil, 9, 17)
	e.Now = fixedClock(tuesdayAt(10, 0))

	sub := &Submission{
		Fields: map[string]string{
			"budget":   "450000",
			"timeline": "asap",
			"message":  "Interested in the Lakeview listing",
		},
		Metadata: Metadata{
			FormID: "contact-form",
			UTM:    map[string]string{"utm_source": "google"},
		},
	}

	tests := []struct {
		name string
		rule ConditionalRule
		want bool
	}{
		{"equal", ConditionalRule{Field: "timeline", Operator: "==", Value: "asap"}, true},
		{"equal miss", ConditionalRule{Field: "timeline", Operator: "==", Value: "soon"}, false},
		{"not equal", ConditionalRule{Field: "timeline", Operator: "!=", Value: "soon"}, true},
		{"greater", ConditionalRule{Field: "budget", Operator: ">", Value: "400000"}, true},
		{"greater miss", ConditionalRule{Field: "budget", Operator: ">", Value: "450000"}, false},
		{"greater or equal boundary", ConditionalRule{Field: "budget", Operator: ">=", Value: "450000"}, true},
		{"less", ConditionalRule{Field: "budget", Operator: "<", Value: "500000"}, true},
		{"less or equal", ConditionalRule{Field: "budget", Operator: "<=", Value: "450000"}, true},
		{"contains is case insensitive", ConditionalRule{Field: "message", Operator: "contains", Value: "LAKEVIEW"}, true},
		{"contains empty value never matches", ConditionalRule{Field: "message", Operator: "contains", Value: ""}, false},
		{"not contains", ConditionalRule{Field: "message", Operator: "not_contains", Value: "rental"}, true},
		{"metadata path", ConditionalRule{Field: "metadata.form_id", Operator: "==", Value: "contact-form"}, true},
		{"metadata utm path", ConditionalRule{Field: "metadata.utm_source", Operator: "==", Value: "google"}, true},
		{"missing field equals empty", ConditionalRule{Field: "nope", Operator: "==", Value: ""}, true},
		{"missing field numeric is zero", ConditionalRule{Field: "nope", Operator: "<", Value: "1"}, true},
		{"unknown operator fails closed", ConditionalRule{Field: "budget", Operator: "between", Value: "1"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Evaluate(context.Background(), sub, tt.rule); got != tt.want {
				t.Fatalf("Evaluate(%+v) = %v, want %v", tt.rule, got, tt.want)
			}
		})
	}
}

func TestEvaluateTimeOfDay(t *testing.T) {
	e := NewEvaluator(nil, 9, 17)
	e.Now = fixedClock(tuesdayAt(17, 30))

	sub := &Submission{Fields: map[string]string{}}

	rule := ConditionalRule{Field: FieldTimeOfDay, Operator: ">", Value: "17:00"}
	if !e.Evaluate(context.Background(), sub, rule) {
		t.Fatal("17:30 should compare greater than 17:00")
	}

	rule = ConditionalRule{Field: FieldTimeOfDay, Operator: "<", Value: "18:00"}
	if !e.Evaluate(context.Background(), sub, rule) {
		t.Fatal("17:30 should compare less than 18:00")
	}
}

func TestEvaluateBusinessHoursAndWeekend(t *testing.T) {
	e := NewEvaluator(nil, 9, 17)
	sub := &Submission{Fields: map[string]string{}}
	outside := ConditionalRule{Operator: OpOutsideBizHours}
	weekend := ConditionalRule{Operator: OpIsWeekend}

	e.Now = fixedClock(tuesdayAt(10, 0))
	if e.Evaluate(context.Background(), sub, outside) {
		t.Fatal("10:00 tuesday is inside business hours")
	}
	if e.Evaluate(context.Background(), sub, weekend) {
		t.Fatal("tuesday is not a weekend")
	}

	e.Now = fixedClock(tuesdayAt(8, 59))
	if !e.Evaluate(context.Background(), sub, outside) {
		t.Fatal("08:59 is before opening")
	}

	// End hour is exclusive.
	e.Now = fixedClock(tuesdayAt(17, 0))
	if !e.Evaluate(context.Background(), sub, outside) {
		t.Fatal("17:00 is after closing")
	}

	saturday := time.Date(2026, time.March, 7, 10, 0, 0, 0, time.UTC)
	e.Now = fixedClock(saturday)
	if !e.Evaluate(context.Background(), sub, weekend) {
		t.Fatal("saturday is a weekend")
	}
}

func TestEvaluateListingPrice(t *testing.T) {
	prices := &fakePrices{prices: map[string]float64{"42": 1250000}}
	e := NewEvaluator(prices, 9, 17)
	e.Now = fixedClock(tuesdayAt(10, 0))

	sub := &Submission{Fields: map[string]string{"listing_id": "42"}}
	rule := ConditionalRule{Field: FieldListingPrice, Operator: ">", Value: "1000000"}
	if !e.Evaluate(context.Background(), sub, rule) {
		t.Fatal("price 1250000 should exceed 1000000")
	}

	// Lookup failures fail closed.
	e = NewEvaluator(&fakePrices{err: errors.New("down")}, 9, 17)
	if e.Evaluate(context.Background(), sub, rule) {
		t.Fatal("lookup failure must not match")
	}

	// No listing reference fails closed.
	e = NewEvaluator(prices, 9, 17)
	bare := &Submission{Fields: map[string]string{}}
	if e.Evaluate(context.Background(), bare, rule) {
		t.Fatal("missing listing must not match")
	}
}
