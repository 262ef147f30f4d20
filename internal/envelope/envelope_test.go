package envelope

import (
	"encoding/json"
	"strings"
	"testing"

	xerrors "Sonic-Agent/internal/errors"
	"Sonic-Agent/internal/txbuilder"
)

func TestSuccessShape(t *testing.T) {
	env := Success("Balance: 12.5 S")

	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := string(data)
	if got != `{"status":"success","result":"Balance: 12.5 S"}` {
		t.Fatalf("unexpected payload: %s", got)
	}
}

func TestSuccessShapeEmptyResult(t *testing.T) {
	data, err := json.Marshal(Success(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// result 字段即使为空串也必须出现。
	if got := string(data); got != `{"status":"success","result":""}` {
		t.Fatalf("unexpected payload: %s", got)
	}
}

func TestFailureShape(t *testing.T) {
	env := Failure(xerrors.Newf(xerrors.CodeMissingParameter, "缺少必填参数 %q", "to_address"))

	if !env.IsError() {
		t.Fatalf("expected error envelope")
	}
	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := string(data)
	if !strings.Contains(got, `"status":"error"`) {
		t.Fatalf("missing error status: %s", got)
	}
	if !strings.Contains(got, `"error":"MissingParameter"`) {
		t.Fatalf("error field must carry the stable kind: %s", got)
	}
	if strings.Contains(got, `"result"`) {
		t.Fatalf("error envelope must not carry a result: %s", got)
	}
}

func TestPendingShape(t *testing.T) {
	descriptor := &txbuilder.Descriptor{
		From:              "0x123",
		To:                "0x456",
		Amount:            json.Number("100"),
		TokenName:         "S",
		TokenAddress:      "0x0000000000000000000000000000000000000000",
		Decimals:          18,
		RequiresSignature: true,
	}
	env := Pending("transfer", descriptor, "Please confirm transfer of 100 S from 0x123 to 0x456")

	if !env.IsPending() {
		t.Fatalf("expected pending envelope")
	}
	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := string(data)
	if strings.Contains(got, `"status"`) {
		t.Fatalf("pending envelope must not carry a status: %s", got)
	}
	if !strings.Contains(got, `"amount":100`) {
		t.Fatalf("amount must stay numeric on the wire: %s", got)
	}
	if !strings.Contains(got, `"action":"transfer"`) {
		t.Fatalf("missing action: %s", got)
	}
}

func TestFormatBranches(t *testing.T) {
	if env := Format(Result{Value: "ok"}); env.Status != StatusSuccess || env.Result != "ok" {
		t.Fatalf("unexpected success envelope: %+v", env)
	}

	pendingRes := Result{Action: "transfer", Transaction: &txbuilder.Descriptor{}, Message: "confirm"}
	if env := Format(pendingRes); !env.IsPending() || env.Message != "confirm" {
		t.Fatalf("unexpected pending envelope: %+v", env)
	}

	failRes := Result{Err: xerrors.New(xerrors.CodeExecutorError, "boom")}
	if env := Format(failRes); !env.IsError() || env.Error != "ExecutorError" {
		t.Fatalf("unexpected failure envelope: %+v", env)
	}
}

func TestFailureWithUncodedError(t *testing.T) {
	env := Failure(json.Unmarshal([]byte("{"), &struct{}{}))
	if env.Error != string(xerrors.CodeUnknown) {
		t.Fatalf("uncoded error should map to Unknown, got %s", env.Error)
	}
	if env.Detail == "" {
		t.Fatalf("detail should carry the original error text")
	}
}
