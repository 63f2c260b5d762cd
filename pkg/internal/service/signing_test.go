package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docshield/docshield/pkg/apperr"
	"github.com/docshield/docshield/pkg/configs"
)

func testSigningConfig(t *testing.T) configs.SigningConfig {
	t.Helper()

	return configs.SigningConfig{
		KeyDir:      t.TempDir(),
		Bits:        2048,
		AutoGen:     true,
		PrivateFile: "private_key.pem",
		PublicFile:  "public_key.pem",
	}
}

func hashHexOf(data string) string {
	sum := sha256.Sum256([]byte(data))

	return hex.EncodeToString(sum[:])
}

func TestSignVerifyRoundTrip(t *testing.T) {
	signer, err := newSigner(testSigningConfig(t))
	require.NoError(t, err)

	hashHex := hashHexOf("document body")

	sigHex, err := signer.SignHex(hashHex)
	require.NoError(t, err)
	require.NotEmpty(t, sigHex)

	require.NoError(t, signer.VerifyHex(hashHex, sigHex))
}

func TestVerifyRejectsMismatch(t *testing.T) {
	signer, err := newSigner(testSigningConfig(t))
	require.NoError(t, err)

	sigHex, err := signer.SignHex(hashHexOf("original"))
	require.NoError(t, err)

	// 其他哈希配同一签名不通过
	err = signer.VerifyHex(hashHexOf("tampered"), sigHex)
	require.Equal(t, apperr.KindClient, apperr.KindOf(err))

	// 非法编码
	err = signer.VerifyHex(hashHexOf("original"), "zz-not-hex")
	require.Equal(t, apperr.KindClient, apperr.KindOf(err))
}

func TestSignHexRejectsBadDigest(t *testing.T) {
	signer, err := newSigner(testSigningConfig(t))
	require.NoError(t, err)

	// 非 hex
	_, err = signer.SignHex("not-hex")
	require.Equal(t, apperr.KindClient, apperr.KindOf(err))

	// 长度不是 32 字节
	_, err = signer.SignHex("deadbeef")
	require.Equal(t, apperr.KindClient, apperr.KindOf(err))
}

func TestGenerateKeyPairWritesPEMFiles(t *testing.T) {
	cfg := testSigningConfig(t)

	priv, err := GenerateKeyPair(cfg)
	require.NoError(t, err)
	require.NotNil(t, priv)

	privData, err := os.ReadFile(filepath.Join(cfg.KeyDir, cfg.PrivateFile))
	require.NoError(t, err)

	block, _ := pem.Decode(privData)
	require.NotNil(t, block)
	require.Equal(t, "RSA PRIVATE KEY", block.Type)

	pubData, err := os.ReadFile(filepath.Join(cfg.KeyDir, cfg.PublicFile))
	require.NoError(t, err)

	block, _ = pem.Decode(pubData)
	require.NotNil(t, block)
	require.Equal(t, "PUBLIC KEY", block.Type)

	// 已有密钥可以被重新加载
	loaded, err := loadPrivateKey(filepath.Join(cfg.KeyDir, cfg.PrivateFile))
	require.NoError(t, err)
	require.True(t, priv.Equal(loaded))
}

func TestNewSignerReusesExistingKey(t *testing.T) {
	cfg := testSigningConfig(t)

	first, err := newSigner(cfg)
	require.NoError(t, err)

	second, err := newSigner(cfg)
	require.NoError(t, err)

	// 第一个实例签的名第二个实例能验
	hashHex := hashHexOf("shared key material")

	sigHex, err := first.SignHex(hashHex)
	require.NoError(t, err)
	require.NoError(t, second.VerifyHex(hashHex, sigHex))
}

func TestNewSignerFailsWithoutAutoGen(t *testing.T) {
	cfg := testSigningConfig(t)
	cfg.AutoGen = false

	_, err := newSigner(cfg)
	require.Error(t, err)
}

func TestPublicKeyPEM(t *testing.T) {
	signer, err := newSigner(testSigningConfig(t))
	require.NoError(t, err)

	pemText, err := signer.PublicKeyPEM()
	require.NoError(t, err)

	block, _ := pem.Decode([]byte(pemText))
	require.NotNil(t, block)
	require.Equal(t, "PUBLIC KEY", block.Type)
}
