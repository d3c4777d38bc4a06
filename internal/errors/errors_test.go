package errors

import (
	"context"
	"fmt"
	"net/http"
	"testing"
)

func TestExitCodeFollowsWrappedError(t *testing.T) {
	base := Reject(CodeUnsupportedChain, "chain solana is not supported", []string{"tron", "ethereum"})
	wrapped := fmt.Errorf("dispatch: %w", base)
	if got := ExitCode(wrapped); got != int(CodeUnsupportedChain) {
		t.Fatalf("expected exit %d, got %d", CodeUnsupportedChain, got)
	}
	if got := ExitCode(fmt.Errorf("plain")); got != int(CodeInternal) {
		t.Fatalf("expected internal exit for untyped error, got %d", got)
	}
	if got := ExitCode(nil); got != 0 {
		t.Fatalf("expected success exit, got %d", got)
	}
}

func TestRejectCopiesOptions(t *testing.T) {
	opts := []string{"USDC", "USDT"}
	err := Reject(CodeUnsupportedToken, "bad token", opts)
	opts[0] = "XXX"
	if err.Options[0] != "USDC" {
		t.Fatalf("options should not alias caller slice: %#v", err.Options)
	}
}

func TestHTTPStatusSeparatesFeeFailures(t *testing.T) {
	validation := []Code{CodeUnsupportedChain, CodeUnsupportedToken, CodeInvalidAddress, CodeMissingParameter, CodeUnknownCommand}
	for _, code := range validation {
		if got := HTTPStatus(code); got != http.StatusBadRequest {
			t.Fatalf("code %d: expected 400, got %d", code, got)
		}
	}
	if got := HTTPStatus(CodeFeeEstimation); got != http.StatusInternalServerError {
		t.Fatalf("expected 500 for fee estimation, got %d", got)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap(CodeFeeEstimation, "estimate fee on Ethereum", context.DeadlineExceeded)
	if err.Error() != "estimate fee on Ethereum: context deadline exceeded" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
	if !IsCode(err, CodeFeeEstimation) {
		t.Fatal("expected fee estimation code")
	}
	if Kind(err.Code) != "fee_estimation_failed" {
		t.Fatalf("unexpected kind: %s", Kind(err.Code))
	}
}
