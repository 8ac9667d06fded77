package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMessagePrecedence(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		err  Error
		want string
	}{
		{New(CodeDownloadFailed, "download failed", cause), "download failed"},
		{New(CodeDownloadFailed, "", cause), "boom"},
		{New(CodeDownloadFailed, "", nil), "download_failed"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestCodeOfWalksChain(t *testing.T) {
	cause := errors.New("registry unavailable")
	err := fmt.Errorf("uninstall firefox: %w", New(CodeRegistryError, "open key", cause))

	if got := CodeOf(err); got != CodeRegistryError {
		t.Errorf("CodeOf() = %q, want %q", got, CodeRegistryError)
	}
	if !IsCode(err, CodeRegistryError) {
		t.Error("IsCode() should match wrapped code")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause")
	}
	if got := CodeOf(cause); got != CodeUnknown {
		t.Errorf("CodeOf(plain) = %q, want %q", got, CodeUnknown)
	}
}
