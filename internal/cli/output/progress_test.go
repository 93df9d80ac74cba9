package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestProgressBar_Done(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf, "state-dump", 4)

	bar.Done(nil)
	bar.Done(nil)

	out := buf.String()
	if !strings.Contains(out, "state-dump") {
		t.Error("output should contain title")
	}
	if !strings.Contains(out, " 50%") {
		t.Errorf("output should contain 50%%, got %q", out)
	}
	if !strings.Contains(out, "(2/4)") {
		t.Errorf("output should contain item counts, got %q", out)
	}
}

func TestProgressBar_Failures(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf, "dump", 2)

	bar.Done(nil)
	bar.Done(errors.New("boom"))

	if !strings.Contains(buf.String(), "1 failed") {
		t.Errorf("output should report failures, got %q", buf.String())
	}
	done, failed := bar.Counts()
	if done != 2 || failed != 1 {
		t.Errorf("Counts() = %d, %d; want 2, 1", done, failed)
	}
}

func TestProgressBar_Finish(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf, "dump", 1)
	bar.Done(nil)
	bar.Finish()

	out := buf.String()
	if !strings.HasSuffix(out, "\n") {
		t.Error("Finish should end with newline")
	}
	if !strings.Contains(out, "100%") {
		t.Error("Finish should show 100%")
	}
}

func TestProgressBar_UnknownTotal(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf, "dump", 0)
	bar.Done(nil)
	bar.Done(nil)

	if !strings.HasSuffix(buf.String(), "dump 2") {
		t.Errorf("unknown total should print a bare count, got %q", buf.String())
	}
}

func TestProgressBar_Overflow(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf, "dump", 1)
	bar.Done(nil)
	bar.Done(nil)

	if strings.Contains(buf.String(), "200%") {
		t.Error("ratio should be capped at 100%")
	}
}
