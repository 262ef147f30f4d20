package intent

import (
	"bytes"
	"testing"

	xerrors "Sonic-Agent/internal/errors"
)

// stubResolver 以固定的表充当动作 Schema 源。
type stubResolver struct {
	schemas map[string]*ActionSchema
}

func (s *stubResolver) ResolveAction(action string) (string, *ActionSchema, bool) {
	schema, ok := s.schemas[action]
	if !ok {
		return "", nil, false
	}
	return "sonic", schema, true
}

func newTestValidator() *Validator {
	return NewValidator(&stubResolver{schemas: map[string]*ActionSchema{
		"get-balance": {
			Name: "get-balance",
			Required: []ParamSpec{
				{Name: "from_address", Type: TypeAddress},
			},
			Optional: []OptionalParam{
				{ParamSpec: ParamSpec{Name: "token_name", Type: TypeString}, Default: NativeTicker},
				{ParamSpec: ParamSpec{Name: "token_address", Type: TypeAddress}},
			},
			ResolvesToken: true,
		},
		"transfer": {
			Name: "transfer",
			Required: []ParamSpec{
				{Name: "from_address", Type: TypeAddress},
				{Name: "to_address", Type: TypeAddress},
				{Name: "amount", Type: TypeDecimal},
			},
			Optional: []OptionalParam{
				{ParamSpec: ParamSpec{Name: "token_name", Type: TypeString}, Default: NativeTicker},
			},
			RequiresSignature: true,
			ResolvesToken:     true,
		},
		"get-inference": {
			Name: "get-inference",
			Required: []ParamSpec{
				{Name: "topic_id", Type: TypeInt},
			},
		},
	}})
}

func TestValidateAppliesDefaults(t *testing.T) {
	v := newTestValidator()

	validated, err := v.Validate(Raw{
		Action: "get-balance",
		Params: []Param{{Name: "from_address", Value: "0x123"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if validated.Connection != "sonic" {
		t.Fatalf("unexpected connection: %q", validated.Connection)
	}
	if got := validated.Text("token_name"); got != NativeTicker {
		t.Fatalf("token_name default = %q, want %q", got, NativeTicker)
	}
	if validated.RequiresSignature {
		t.Fatalf("get-balance must not require signature")
	}
	if !validated.ResolvesToken {
		t.Fatalf("get-balance should resolve tokens")
	}
}

func TestValidateEmptyValueUsesDefault(t *testing.T) {
	v := newTestValidator()

	validated, err := v.Validate(Raw{
		Action: "get-balance",
		Params: []Param{
			{Name: "from_address", Value: "0x123"},
			{Name: "token_name", Value: "   "},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := validated.Text("token_name"); got != NativeTicker {
		t.Fatalf("blank token_name should fall back to %q, got %q", NativeTicker, got)
	}
}

func TestValidateUnsupportedAction(t *testing.T) {
	v := newTestValidator()

	_, err := v.Validate(Raw{Action: "stake-tokens"})
	if err == nil {
		t.Fatalf("expected error for unknown action")
	}
	if code := xerrors.CodeOf(err); code != xerrors.CodeUnsupportedAction {
		t.Fatalf("unexpected code: %s", code)
	}
}

func TestValidateMissingParameter(t *testing.T) {
	v := newTestValidator()

	_, err := v.Validate(Raw{
		Action: "transfer",
		Params: []Param{
			{Name: "from_address", Value: "0x123"},
			{Name: "amount", Value: "1.5"},
		},
	})
	if err == nil {
		t.Fatalf("expected error for missing to_address")
	}
	if code := xerrors.CodeOf(err); code != xerrors.CodeMissingParameter {
		t.Fatalf("unexpected code: %s", code)
	}
}

func TestValidateInvalidParameterType(t *testing.T) {
	v := newTestValidator()

	cases := []struct {
		name string
		raw  Raw
	}{
		{
			name: "bad address",
			raw: Raw{Action: "get-balance", Params: []Param{
				{Name: "from_address", Value: "not-an-address"},
			}},
		},
		{
			name: "bad amount",
			raw: Raw{Action: "transfer", Params: []Param{
				{Name: "from_address", Value: "0x123"},
				{Name: "to_address", Value: "0x456"},
				{Name: "amount", Value: "a lot"},
			}},
		},
		{
			name: "bad int",
			raw: Raw{Action: "get-inference", Params: []Param{
				{Name: "topic_id", Value: "first"},
			}},
		},
		{
			// big.ParseFloat 能解析 "inf"，金额必须是有限数。
			name: "infinite amount",
			raw: Raw{Action: "transfer", Params: []Param{
				{Name: "from_address", Value: "0x123"},
				{Name: "to_address", Value: "0x456"},
				{Name: "amount", Value: "inf"},
			}},
		},
		{
			name: "negative infinite amount",
			raw: Raw{Action: "transfer", Params: []Param{
				{Name: "from_address", Value: "0x123"},
				{Name: "to_address", Value: "0x456"},
				{Name: "amount", Value: "-Inf"},
			}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.Validate(tc.raw)
			if err == nil {
				t.Fatalf("expected error")
			}
			if code := xerrors.CodeOf(err); code != xerrors.CodeInvalidParameterType {
				t.Fatalf("unexpected code: %s", code)
			}
		})
	}
}

func TestValidateSignatureClassification(t *testing.T) {
	v := newTestValidator()

	validated, err := v.Validate(Raw{
		Action: "transfer",
		Params: []Param{
			{Name: "from_address", Value: "0x123"},
			{Name: "to_address", Value: "0x456"},
			{Name: "amount", Value: "100"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !validated.RequiresSignature {
		t.Fatalf("transfer must require signature")
	}
}

func TestValidateDeterministic(t *testing.T) {
	v := newTestValidator()

	raw := Raw{
		Action: "transfer",
		Params: []Param{
			{Name: "from_address", Value: "0x123"},
			{Name: "to_address", Value: "0x456"},
			{Name: "amount", Value: "1.50"},
		},
	}

	first, err := v.Validate(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := v.Validate(raw)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.Equal(first.Encode(), again.Encode()) {
			t.Fatalf("validation is not deterministic:\n%s\n%s", first.Encode(), again.Encode())
		}
	}
}

func TestValidateCanonicalizesNumbers(t *testing.T) {
	v := newTestValidator()

	validated, err := v.Validate(Raw{
		Action: "transfer",
		Params: []Param{
			{Name: "from_address", Value: "0x123"},
			{Name: "to_address", Value: "0x456"},
			{Name: "amount", Value: "1.50"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := validated.Text("amount"); got != "1.5" {
		t.Fatalf("amount = %q, want canonical %q", got, "1.5")
	}
}

func TestValidateIgnoresExtraParams(t *testing.T) {
	v := newTestValidator()

	validated, err := v.Validate(Raw{
		Action: "get-balance",
		Params: []Param{
			{Name: "from_address", Value: "0x123"},
			{Name: "collection_address", Value: "0x789"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := validated.Get("collection_address"); ok {
		t.Fatalf("undeclared parameter should be dropped")
	}
}

func TestIsAddress(t *testing.T) {
	cases := map[string]bool{
		"0x123": true,
		"0x039e2fB66102314Ce7b64Ce5Ce3E5183bc94aD38": true,
		"0x":      false,
		"123":     false,
		"0xzz":    false,
		"0X123":   false,
		"0x12 34": false,
	}
	for input, want := range cases {
		if got := IsAddress(input); got != want {
			t.Fatalf("IsAddress(%q) = %v, want %v", input, got, want)
		}
	}
}
