package logging

import (
	"context"
	"testing"
)

func TestWithCommand(t *testing.T) {
	ctx := WithCommand(context.Background(), "add")

	if got := GetCommand(ctx); got != "add" {
		t.Errorf("GetCommand() = %q, want %q", got, "add")
	}
}

func TestWithRecordID(t *testing.T) {
	ctx := WithRecordID(context.Background(), "r-42")

	if got := GetRecordID(ctx); got != "r-42" {
		t.Errorf("GetRecordID() = %q, want %q", got, "r-42")
	}
}

func TestGetters_NotPresent(t *testing.T) {
	ctx := context.Background()

	if got := GetCommand(ctx); got != "" {
		t.Errorf("GetCommand() = %q, want empty string", got)
	}
	if got := GetRecordID(ctx); got != "" {
		t.Errorf("GetRecordID() = %q, want empty string", got)
	}
}
