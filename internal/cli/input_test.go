package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestGetSimpleText(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("report.pdf\n"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "File?", &out)
	if err != nil || got != "report.pdf" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetSimpleTextEOF(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("lastline"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "File?", &out)
	if err != nil || got != "lastline" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetSimpleTextEmptyEOF(t *testing.T) {
	in := bufio.NewReader(strings.NewReader(""))
	var out bytes.Buffer
	_, err := GetSimpleText(in, "File?", &out)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestGetPIN(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) {
		return []byte("482913"), nil
	}
	var out bytes.Buffer
	pin, err := GetPIN(&out, "PIN")
	if err != nil {
		t.Fatal(err)
	}
	if pin != "482913" {
		t.Fatalf("got %q", pin)
	}
	if !strings.Contains(out.String(), "PIN") {
		t.Fatalf("prompt missing: %q", out.String())
	}
}

func TestGetPIN_Error(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) {
		return nil, errors.New("boom")
	}
	var out bytes.Buffer
	_, err := GetPIN(&out, "PIN")
	if err == nil {
		t.Fatal("expected error")
	}
}
