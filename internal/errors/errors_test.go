package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeResolution, "unresolved import 'pkg.missing'")

	if err.Code != CodeResolution {
		t.Errorf("Code = %v, want %v", err.Code, CodeResolution)
	}
	if err.Message != "unresolved import 'pkg.missing'" {
		t.Errorf("Message = %q, want %q", err.Message, "unresolved import 'pkg.missing'")
	}
	if err.Unwrap() != nil {
		t.Error("Unwrap() on a cause-free error should return nil")
	}
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name      string
		code      ErrorCode
		message   string
		cause     error
		wantParts []string
	}{
		{
			name:      "with cause",
			code:      CodeIO,
			message:   "failed to read repo root",
			cause:     errors.New("permission denied"),
			wantParts: []string{"IO", "failed to read repo root", "permission denied"},
		},
		{
			name:      "without cause",
			code:      CodeQuery,
			message:   "query string is empty",
			cause:     nil,
			wantParts: []string{"QUERY", "query string is empty"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err *Error
			if tt.cause != nil {
				err = Wrap(tt.code, tt.message, tt.cause)
			} else {
				err = New(tt.code, tt.message)
			}
			got := err.Error()

			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Error() = %q, want to contain %q", got, part)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(CodeSchemaCorruption, "index segment checksum mismatch", cause)

	if unwrapped := err.Unwrap(); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	errNoCause := New(CodeReranker, "reranker deadline exceeded")
	if errNoCause.Unwrap() != nil {
		t.Error("Unwrap() on error without cause should return nil")
	}
}

func TestCodeOf(t *testing.T) {
	cause := errors.New("disk full")
	wrapped := Wrap(CodeIO, "failed to persist index", cause)
	doubleWrapped := fmt.Errorf("build failed: %w", wrapped)

	if code, ok := CodeOf(wrapped); !ok || code != CodeIO {
		t.Errorf("CodeOf(wrapped) = (%v, %v), want (%v, true)", code, ok, CodeIO)
	}
	if code, ok := CodeOf(doubleWrapped); !ok || code != CodeIO {
		t.Errorf("CodeOf(doubleWrapped) = (%v, %v), want (%v, true)", code, ok, CodeIO)
	}
	if _, ok := CodeOf(errors.New("plain error")); ok {
		t.Error("CodeOf(plain error) should report ok=false")
	}
}

func TestErrorCodesUnique(t *testing.T) {
	codes := []ErrorCode{
		CodeIO,
		CodeParse,
		CodeResolution,
		CodeSchemaCorruption,
		CodeQuery,
		CodeReranker,
		CodeInvalidParameter,
	}

	seen := make(map[ErrorCode]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("duplicate error code: %v", code)
		}
		seen[code] = true
		if string(code) == "" {
			t.Error("error code should not be empty")
		}
	}
}

func TestInvalidParameterError(t *testing.T) {
	withReason := InvalidParameterError("max-python-files", "must be non-negative")
	if withReason.Code != CodeInvalidParameter {
		t.Errorf("Code = %v, want %v", withReason.Code, CodeInvalidParameter)
	}
	if !strings.Contains(withReason.Message, "must be non-negative") {
		t.Errorf("Message = %q, want it to contain reason", withReason.Message)
	}

	withoutReason := InvalidParameterError("repo-root", "")
	if !strings.Contains(withoutReason.Message, "missing or invalid") {
		t.Errorf("Message = %q, want default phrasing", withoutReason.Message)
	}
}

func TestConstructorHelpers(t *testing.T) {
	if err := ParseError("pkg/mod.py", errors.New("unexpected indent")); err.Code != CodeParse {
		t.Errorf("ParseError code = %v, want %v", err.Code, CodeParse)
	}
	if err := ResolutionError("cannot resolve wildcard import"); err.Code != CodeResolution {
		t.Errorf("ResolutionError code = %v, want %v", err.Code, CodeResolution)
	}
	if err := SchemaCorruptionError("bad header", errors.New("eof")); err.Code != CodeSchemaCorruption {
		t.Errorf("SchemaCorruptionError code = %v, want %v", err.Code, CodeSchemaCorruption)
	}
	if err := QueryError("empty query", nil); err.Code != CodeQuery {
		t.Errorf("QueryError code = %v, want %v", err.Code, CodeQuery)
	}
	if err := RerankerError("timed out", nil); err.Code != CodeReranker {
		t.Errorf("RerankerError code = %v, want %v", err.Code, CodeReranker)
	}
	if err := IOError("disk full", nil); err.Code != CodeIO {
		t.Errorf("IOError code = %v, want %v", err.Code, CodeIO)
	}
}
