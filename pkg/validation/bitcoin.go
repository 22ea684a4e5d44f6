package validation

import (
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

// BitcoinValidator validates Bitcoin addresses in both legacy
// Base58Check form (1..., 3...) and Bech32 form (bc1...), delegating the
// actual checksum/witness-version decoding to btcutil rather than
// hand-rolling SHA256d or Bech32 — the same approach the pack's
// leanlp-BTC-coinjoin example uses for its RPC client address handling.
type BitcoinValidator struct{}

func (BitcoinValidator) Type() string { return "BITCOIN_ADDRESS" }

func (BitcoinValidator) Normalize(candidate string) string { return strings.TrimSpace(candidate) }

func (v BitcoinValidator) Validate(candidate string) (bool, float64) {
	addr := v.Normalize(candidate)
	if len(addr) < 26 || len(addr) > 62 {
		return false, 0
	}
	decoded, err := btcutil.DecodeAddress(addr, &chaincfg.MainNetParams)
	if err != nil {
		return false, 0
	}
	if !decoded.IsForNet(&chaincfg.MainNetParams) {
		return false, 0
	}
	if strings.HasPrefix(strings.ToLower(addr), "bc1") {
		return true, 0.9
	}
	return true, 0.93
}

var ethereumPattern = mustCompileEthereum()

func mustCompileEthereum() *simpleHexPattern {
	return &simpleHexPattern{prefix: "0x", length: 40}
}

// simpleHexPattern checks a 0x-prefixed fixed-length hex string without
// pulling in a dedicated regex for such a simple shape.
type simpleHexPattern struct {
	prefix string
	length int
}

func (p *simpleHexPattern) Match(s string) bool {
	if !strings.HasPrefix(s, p.prefix) {
		return false
	}
	hexPart := s[len(p.prefix):]
	if len(hexPart) != p.length {
		return false
	}
	for i := 0; i < len(hexPart); i++ {
		c := hexPart[i]
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

// EthereumValidator validates 0x-prefixed 40-hex-character Ethereum
// addresses.
type EthereumValidator struct{}

func (EthereumValidator) Type() string { return "ETHEREUM_ADDRESS" }

func (EthereumValidator) Normalize(candidate string) string { return strings.TrimSpace(candidate) }

func (v EthereumValidator) Validate(candidate string) (bool, float64) {
	addr := v.Normalize(candidate)
	if !ethereumPattern.Match(addr) {
		return false, 0
	}
	return true, 0.85
}
