package config

import "fmt"

// ValidateTLSConfig validates the TLS configuration
func (c *Config) ValidateTLSConfig() error {
	tls := c.Server.TLS

	if err := validateTLSMode(tls); err != nil {
		return err
	}
	return validateTLSVersion(tls)
}

func validateTLSMode(tls TLSConfig) error {
	switch tls.Mode {
	case "disabled":
		return nil
	case "server":
		return validateCertSources(tls, tls.Mode+" mode")
	case "mutual":
		if err := validateCertSources(tls, tls.Mode+" mode"); err != nil {
			return err
		}
		if err := validatePEMSource("CA certificate", "ca", tls.CAFile, tls.CAContent, true); err != nil {
			return err
		}
		return validateClientAuthPolicy(tls)
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", tls.Mode)
	}
}

func validateCertSources(tls TLSConfig, mode string) error {
	if (tls.CertFile == "" && tls.CertContent == "") || (tls.KeyFile == "" && tls.KeyContent == "") {
		return fmt.Errorf("TLS certificate and key are required for %s (provide either files or content)", mode)
	}
	if err := validatePEMSource("certificate", "cert", tls.CertFile, tls.CertContent, false); err != nil {
		return err
	}
	return validatePEMSource("key", "key", tls.KeyFile, tls.KeyContent, false)
}

// validatePEMSource requires at most one of file and content, and at least
// one when required is set.
func validatePEMSource(what, field, file, content string, required bool) error {
	if file != "" && content != "" {
		return fmt.Errorf("cannot specify both %sFile and %sContent - choose one", field, field)
	}
	if required && file == "" && content == "" {
		return fmt.Errorf("%s is required for mutual TLS mode (provide either %sFile or %sContent)", what, field, field)
	}
	return nil
}

func validateClientAuthPolicy(tls TLSConfig) error {
	switch tls.ClientAuthPolicy {
	case "require", "request", "verify", "":
		return nil
	default:
		return fmt.Errorf("invalid clientAuthPolicy: %s (must be 'require', 'request', or 'verify')", tls.ClientAuthPolicy)
	}
}

func validateTLSVersion(tls TLSConfig) error {
	switch tls.MinVersion {
	case "", "1.2", "1.3":
		return nil
	default:
		return fmt.Errorf("invalid TLS minVersion: %s (must be '1.2' or '1.3')", tls.MinVersion)
	}
}
