package certgen

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func parseCert(t *testing.T, certPEM []byte) *x509.Certificate {
	t.Helper()
	block, _ := pem.Decode(certPEM)
	if block == nil || block.Type != "CERTIFICATE" {
		t.Fatalf("invalid certificate PEM")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		t.Fatalf("parse cert: %v", err)
	}
	return cert
}

func TestGenerateServerCertificate(t *testing.T) {
	certPEM, keyPEM, err := GenerateServerCertificate([]string{"localhost", "127.0.0.1"}, 24*time.Hour)
	if err != nil {
		t.Fatalf("GenerateServerCertificate error: %v", err)
	}

	cert := parseCert(t, certPEM)
	if cert.Subject.CommonName != "localhost" {
		t.Errorf("CommonName = %q; want %q", cert.Subject.CommonName, "localhost")
	}
	if len(cert.DNSNames) != 1 || cert.DNSNames[0] != "localhost" {
		t.Errorf("DNSNames = %v; want [localhost]", cert.DNSNames)
	}
	if len(cert.IPAddresses) != 1 || !cert.IPAddresses[0].Equal(net.ParseIP("127.0.0.1")) {
		t.Errorf("IPAddresses = %v; want [127.0.0.1]", cert.IPAddresses)
	}
	if err := cert.VerifyHostname("localhost"); err != nil {
		t.Errorf("VerifyHostname: %v", err)
	}
	if d := cert.NotAfter.Sub(time.Now()); d > 25*time.Hour || d < 23*time.Hour {
		t.Errorf("unexpected validity: %v", d)
	}

	// The pair must be usable by crypto/tls.
	if _, err := tls.X509KeyPair(certPEM, keyPEM); err != nil {
		t.Errorf("X509KeyPair: %v", err)
	}
}

func TestGenerateServerCertificate_NoHosts(t *testing.T) {
	if _, _, err := GenerateServerCertificate(nil, time.Hour); err == nil {
		t.Error("expected error for empty host list")
	}
}

func TestWriteAndLoadKeyPair(t *testing.T) {
	certPEM, keyPEM, err := GenerateServerCertificate([]string{"localhost"}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	dir := filepath.Join(t.TempDir(), "certs")
	certPath, keyPath, err := WriteKeyPair(dir, certPEM, keyPEM)
	if err != nil {
		t.Fatalf("WriteKeyPair error: %v", err)
	}

	info, err := os.Stat(keyPath)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("key permissions = %o; want 600", perm)
	}

	cfg, err := LoadServerTLS(certPath, keyPath)
	if err != nil {
		t.Fatalf("LoadServerTLS error: %v", err)
	}
	if len(cfg.Certificates) != 1 || cfg.MinVersion != tls.VersionTLS12 {
		t.Errorf("unexpected TLS config: %+v", cfg)
	}
}

func TestLoadServerTLS_Missing(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadServerTLS(filepath.Join(dir, "nope.crt"), filepath.Join(dir, "nope.key")); err == nil {
		t.Error("expected error for missing files")
	}
}
