package intake

import (
	"strings"
	"testing"
)

func TestParsePlainMessage(t *testing.T) {
	subject, body, err := ParseMessage(strings.NewReader("Subject: hi\r\nContent-Type: text/plain\r\n\r\nhello there\r\n"))
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if subject != "hi" || body != "hello there" {
		t.Errorf("got subject %q body %q", subject, body)
	}
}

func TestParseMessageWithoutContentType(t *testing.T) {
	_, body, err := ParseMessage(strings.NewReader("Subject: hi\r\n\r\nbare body\r\n"))
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if body != "bare body" {
		t.Errorf("unexpected body %q", body)
	}
}

func TestParseQuotedPrintable(t *testing.T) {
	raw := "Subject: hi\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"Content-Transfer-Encoding: quoted-printable\r\n\r\n" +
		"caf=C3=A9 soft=\r\nbreak\r\n"
	_, body, err := ParseMessage(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if body != "café softbreak" {
		t.Errorf("unexpected body %q", body)
	}
}

func TestParseMultipartPrefersPlainText(t *testing.T) {
	raw := "Subject: hi\r\n" +
		"Content-Type: multipart/mixed; boundary=outer\r\n\r\n" +
		"--outer\r\n" +
		"Content-Type: multipart/alternative; boundary=inner\r\n\r\n" +
		"--inner\r\n" +
		"Content-Type: text/plain\r\n\r\n" +
		"plain part\r\n" +
		"--inner\r\n" +
		"Content-Type: text/html\r\n\r\n" +
		"<p>html part</p>\r\n" +
		"--inner--\r\n" +
		"--outer\r\n" +
		"Content-Type: text/plain\r\n" +
		"Content-Transfer-Encoding: base64\r\n\r\n" +
		"c2Vjb25k\r\nIHBhcnQ=\r\n" +
		"--outer\r\n" +
		"Content-Type: application/pdf\r\n" +
		"Content-Disposition: attachment; filename=\"a.pdf\"\r\n\r\n" +
		"%PDF\r\n" +
		"--outer--\r\n"

	_, body, err := ParseMessage(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if !strings.Contains(body, "plain part") || !strings.Contains(body, "second part") {
		t.Errorf("expected both text parts, got %q", body)
	}
	if strings.Contains(body, "html part") || strings.Contains(body, "PDF") {
		t.Errorf("non-text parts leaked into %q", body)
	}
}

func TestParseMultipartWithoutText(t *testing.T) {
	raw := "Subject: hi\r\n" +
		"Content-Type: multipart/mixed; boundary=b\r\n\r\n" +
		"--b\r\n" +
		"Content-Type: image/png\r\n\r\n" +
		"xxxx\r\n" +
		"--b--\r\n"

	_, body, err := ParseMessage(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if body != "" {
		t.Errorf("expected empty body, got %q", body)
	}
}

func TestParseEncodedSubject(t *testing.T) {
	raw := "From: a@b.test\r\nSubject: =?UTF-8?B?SW52b2ljZSBkdWU=?=\r\n\r\n  Pay by Friday.  \r\n"
	subject, body, err := ParseMessage(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if subject != "Invoice due" || body != "Pay by Friday." {
		t.Errorf("got subject %q body %q", subject, body)
	}
}

func TestParseMalformedMessage(t *testing.T) {
	if _, _, err := ParseMessage(strings.NewReader("not a message")); err == nil {
		t.Error("expected error for malformed message")
	}
}
