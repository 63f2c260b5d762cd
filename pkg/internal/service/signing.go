package service

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/docshield/docshield/pkg/apperr"
	"github.com/docshield/docshield/pkg/configs"
	nlog "github.com/docshield/docshield/pkg/log"
)

// Signer 对文档哈希做 RSA-PSS 签名。进程内单例，密钥启动时加载一次.
type Signer struct {
	priv *rsa.PrivateKey
	pub  *rsa.PublicKey
}

var (
	signerOnce sync.Once
	signerInst *Signer
	signerErr  error
)

// GetSigner 返回全局 Signer，首次调用时加载（或按配置生成）密钥.
func GetSigner() (*Signer, error) {
	signerOnce.Do(func() {
		signerInst, signerErr = newSigner(configs.GetConfig().Signing)
	})

	return signerInst, signerErr
}

func newSigner(cfg configs.SigningConfig) (*Signer, error) {
	privPath := filepath.Join(cfg.KeyDir, cfg.PrivateFile)

	priv, err := loadPrivateKey(privPath)
	if err != nil {
		if !os.IsNotExist(err) || !cfg.AutoGen {
			return nil, fmt.Errorf("load private key %s: %w", privPath, err)
		}

		nlog.Logger().Info().Str("dir", cfg.KeyDir).Int("bits", cfg.Bits).Msg("signing key missing, generating")

		priv, err = GenerateKeyPair(cfg)
		if err != nil {
			return nil, err
		}
	}

	return &Signer{priv: priv, pub: &priv.PublicKey}, nil
}

// GenerateKeyPair 生成 RSA 密钥对并以 PEM 格式写入配置目录.
func GenerateKeyPair(cfg configs.SigningConfig) (*rsa.PrivateKey, error) {
	priv, err := rsa.GenerateKey(rand.Reader, cfg.Bits)
	if err != nil {
		return nil, fmt.Errorf("generate rsa key: %w", err)
	}

	if err := os.MkdirAll(cfg.KeyDir, 0o700); err != nil {
		return nil, fmt.Errorf("create key dir: %w", err)
	}

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(priv),
	})
	if err := os.WriteFile(filepath.Join(cfg.KeyDir, cfg.PrivateFile), privPEM, 0o600); err != nil {
		return nil, fmt.Errorf("write private key: %w", err)
	}

	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("marshal public key: %w", err)
	}

	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	if err := os.WriteFile(filepath.Join(cfg.KeyDir, cfg.PublicFile), pubPEM, 0o644); err != nil {
		return nil, fmt.Errorf("write public key: %w", err)
	}

	return priv, nil
}

func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in %s", path)
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("key in %s is not RSA", path)
	}

	return key, nil
}

// SignHex 对十六进制编码的 SHA-256 哈希签名，返回十六进制签名.
func (s *Signer) SignHex(hashHex string) (string, error) {
	digestBytes, err := hex.DecodeString(hashHex)
	if err != nil || len(digestBytes) != sha256.Size {
		return "", apperr.Client("invalid sha-256 hash")
	}

	sig, err := rsa.SignPSS(rand.Reader, s.priv, crypto.SHA256, digestBytes, nil)
	if err != nil {
		return "", apperr.Collaborator("sign hash", err)
	}

	return hex.EncodeToString(sig), nil
}

// VerifyHex 校验十六进制签名是否匹配哈希.
func (s *Signer) VerifyHex(hashHex, sigHex string) error {
	digestBytes, err := hex.DecodeString(hashHex)
	if err != nil || len(digestBytes) != sha256.Size {
		return apperr.Client("invalid sha-256 hash")
	}

	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return apperr.Client("invalid signature encoding")
	}

	if err := rsa.VerifyPSS(s.pub, crypto.SHA256, digestBytes, sig, nil); err != nil {
		return apperr.Wrap(apperr.KindClient, "signature mismatch", err)
	}

	return nil
}

// PublicKeyPEM 返回公钥的 PEM 文本，供外部独立校验签名.
func (s *Signer) PublicKeyPEM() (string, error) {
	der, err := x509.MarshalPKIXPublicKey(s.pub)
	if err != nil {
		return "", fmt.Errorf("marshal public key: %w", err)
	}

	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}
