package enums

import "testing"

func TestParseOrderStatusAcceptsFrenchLabels(t *testing.T) {
	cases := map[string]OrderStatus{
		"livré":     OrderStatusDelivered,
		"livre":     OrderStatusDelivered,
		"LIVRÉ":     OrderStatusDelivered,
		"retour":    OrderStatusReturned,
		"annulé":    OrderStatusCancelled,
		"annule":    OrderStatusCancelled,
		"expédié":   OrderStatusShipped,
		"expedie":   OrderStatusShipped,
		" livré ":   OrderStatusDelivered,
		"delivered": OrderStatusDelivered,
		"nrp":       OrderStatusNRP,
	}
	for input, want := range cases {
		got, err := ParseOrderStatus(input)
		if err != nil {
			t.Fatalf("ParseOrderStatus(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseOrderStatus(%q) = %s, want %s", input, got, want)
		}
	}
}

func TestParseOrderStatusRejectsUnknownLabels(t *testing.T) {
	for _, input := range []string{"", "ok", "en route", "livraison"} {
		if _, err := ParseOrderStatus(input); err == nil {
			t.Fatalf("ParseOrderStatus(%q) should fail", input)
		}
	}
}

func TestOrderStatusTerminality(t *testing.T) {
	terminal := []OrderStatus{OrderStatusDelivered, OrderStatusReturned, OrderStatusCancelled, OrderStatusRefunded}
	for _, status := range terminal {
		if !status.IsTerminal() {
			t.Fatalf("%s should be terminal", status)
		}
	}
	active := []OrderStatus{OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing, OrderStatusShipped, OrderStatusAssigned, OrderStatusNRP}
	for _, status := range active {
		if status.IsTerminal() {
			t.Fatalf("%s should not be terminal", status)
		}
	}
}

func TestOrderStatusNoteRequirement(t *testing.T) {
	if !OrderStatusNRP.RequiresNote() || !OrderStatusReturned.RequiresNote() {
		t.Fatalf("nrp and returned need an explanation from the agent")
	}
	if OrderStatusDelivered.RequiresNote() {
		t.Fatalf("delivered needs no note")
	}
}
