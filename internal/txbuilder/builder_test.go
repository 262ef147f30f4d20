package txbuilder

import (
	"strings"
	"testing"

	xerrors "Sonic-Agent/internal/errors"
	"Sonic-Agent/internal/intent"
)

func transferIntent(amount string) *intent.Validated {
	return &intent.Validated{
		Connection: "sonic",
		Action:     "transfer",
		Params: map[string]intent.Value{
			"from_address": {Type: intent.TypeAddress, Text: "0x123"},
			"to_address":   {Type: intent.TypeAddress, Text: "0x456"},
			"amount":       {Type: intent.TypeDecimal, Text: amount},
			"token_name":   {Type: intent.TypeString, Text: "S"},
		},
		RequiresSignature: true,
		ResolvesToken:     true,
	}
}

func TestBuildNativeTransfer(t *testing.T) {
	b := NewBuilder()

	descriptor, message, err := b.Build(transferIntent("1.5"), "S", "0x0000000000000000000000000000000000000000", 18)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if descriptor.From != "0x123" || descriptor.To != "0x456" {
		t.Fatalf("unexpected endpoints: %+v", descriptor)
	}
	if descriptor.Amount.String() != "1.5" {
		t.Fatalf("amount = %s", descriptor.Amount)
	}
	if descriptor.TokenAddress != "0x0000000000000000000000000000000000000000" {
		t.Fatalf("native transfer must use the zero address, got %s", descriptor.TokenAddress)
	}
	if descriptor.Decimals != 18 || !descriptor.RequiresSignature {
		t.Fatalf("unexpected descriptor: %+v", descriptor)
	}
	if !strings.Contains(message, "1.5 S") {
		t.Fatalf("confirmation message lacks amount: %q", message)
	}
}

func TestBuildDefaultsDecimals(t *testing.T) {
	b := NewBuilder()

	descriptor, _, err := b.Build(transferIntent("2"), "S", "0x0000000000000000000000000000000000000000", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if descriptor.Decimals != 18 {
		t.Fatalf("decimals = %d, want 18", descriptor.Decimals)
	}
}

func TestBuildRejectsNonPositiveAmount(t *testing.T) {
	b := NewBuilder()

	for _, amount := range []string{"0", "-1"} {
		_, _, err := b.Build(transferIntent(amount), "S", "0x0000000000000000000000000000000000000000", 18)
		if err == nil {
			t.Fatalf("expected error for amount %q", amount)
		}
		if code := xerrors.CodeOf(err); code != xerrors.CodeInvalidParameterType {
			t.Fatalf("unexpected code for amount %q: %s", amount, code)
		}
	}
}

func TestBuildRejectsNonSignatureIntent(t *testing.T) {
	b := NewBuilder()

	in := transferIntent("1")
	in.RequiresSignature = false
	if _, _, err := b.Build(in, "S", "0x0000000000000000000000000000000000000000", 18); err == nil {
		t.Fatalf("expected error for non-signature intent")
	}
}

func TestBuildRejectsBadAddresses(t *testing.T) {
	b := NewBuilder()

	in := transferIntent("1")
	in.Params["to_address"] = intent.Value{Type: intent.TypeAddress, Text: "nowhere"}
	_, _, err := b.Build(in, "S", "0x0000000000000000000000000000000000000000", 18)
	if err == nil {
		t.Fatalf("expected error for invalid to_address")
	}
	if code := xerrors.CodeOf(err); code != xerrors.CodeInvalidParameterType {
		t.Fatalf("unexpected code: %s", code)
	}
}

func TestDescriptorAmountKeepsNumericForm(t *testing.T) {
	b := NewBuilder()

	descriptor, _, err := b.Build(transferIntent("100"), "S", "0x0000000000000000000000000000000000000000", 18)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// json.Number renders without quotes, so 100 stays numeric on the wire.
	if descriptor.Amount.String() != "100" {
		t.Fatalf("amount = %s", descriptor.Amount)
	}
}
