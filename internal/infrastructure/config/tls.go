package config

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"

	"software.sslmate.com/src/go-pkcs12"
)

// TLSMaterial is the TLS input for the HTTP server: a *CertKeyPair, a
// *PFXBundle, or nil when the service runs plain HTTP.
type TLSMaterial interface {
	// Certificate decodes the material into a certificate usable by crypto/tls.
	Certificate() (tls.Certificate, error)

	tlsMaterial()
}

// CertKeyPair is PEM-encoded certificate and private key data.
type CertKeyPair struct {
	Cert []byte
	Key  []byte
}

func (*CertKeyPair) tlsMaterial() {}

func (p *CertKeyPair) Certificate() (tls.Certificate, error) {
	cert, err := tls.X509KeyPair(p.Cert, p.Key)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("parsing cert/key pair: %w", err)
	}
	return cert, nil
}

// PFXBundle is a PKCS#12 archive and the passphrase that unlocks it.
type PFXBundle struct {
	PFX        []byte
	Passphrase string
}

func (*PFXBundle) tlsMaterial() {}

// Certificate decodes the bundle. CA certificates carried in the bundle are
// appended after the leaf so the server presents the full chain.
func (b *PFXBundle) Certificate() (tls.Certificate, error) {
	key, leaf, chain, err := pkcs12.DecodeChain(b.PFX, b.Passphrase)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("decoding PFX bundle: %w", err)
	}

	der := make([][]byte, 0, 1+len(chain))
	der = append(der, leaf.Raw)
	for _, ca := range chain {
		der = append(der, ca.Raw)
	}
	return tls.Certificate{
		Certificate: der,
		PrivateKey:  key,
		Leaf:        leaf,
	}, nil
}

// LoadTLS reads TLS material named by v.
//
// The cert/key branch is evaluated first and the PFX branch second; when both
// are configured the PFX bundle replaces the cert/key pair. A read failure
// returns *TLSMaterialError and no material. It returns nil, nil when neither
// branch is configured.
func LoadTLS(ctx context.Context, v *Validated) (TLSMaterial, error) {
	var material TLSMaterial

	if v.SSLCertPath != nil && v.SSLKeyPath != nil {
		cert, err := readMaterial(ctx, *v.SSLCertPath, "SSL cert/key")
		if err != nil {
			return nil, err
		}
		key, err := readMaterial(ctx, *v.SSLKeyPath, "SSL cert/key")
		if err != nil {
			return nil, err
		}
		material = &CertKeyPair{Cert: cert, Key: key}
	}

	if v.PFXPassphrase != nil && v.PFXFilePath != nil {
		pfx, err := readMaterial(ctx, *v.PFXFilePath, "PFX file")
		if err != nil {
			return nil, err
		}
		material = &PFXBundle{PFX: pfx, Passphrase: *v.PFXPassphrase}
	}

	return material, nil
}

func readMaterial(ctx context.Context, path, kind string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &TLSMaterialError{Path: path, Material: kind, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &TLSMaterialError{Path: path, Material: kind, Err: err}
	}
	return data, nil
}
