package app

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/n0fate/chainbreaker-go/internal/keychain/records"
)

const keychainTimeDisplay = "2006-01-02 15:04:05 UTC"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(keychainTimeDisplay)
}

// RenderGenericPasswords writes one block per record to w.
func RenderGenericPasswords(w io.Writer, recs []records.GenericPasswordRecord) {
	for i, r := range recs {
		fmt.Fprintf(w, "Generic Password [%d]\n", i)
		fmt.Fprintf(w, "  Account:        %s\n", r.Account)
		fmt.Fprintf(w, "  Service:        %s\n", r.Service)
		fmt.Fprintf(w, "  Description:    %s\n", r.Description)
		fmt.Fprintf(w, "  Print Name:     %s\n", r.PrintName)
		fmt.Fprintf(w, "  Creator/Type:   %s/%s\n", r.Creator, r.Type)
		fmt.Fprintf(w, "  Created:        %s\n", formatTime(r.Created))
		fmt.Fprintf(w, "  Last Modified:  %s\n", formatTime(r.LastModified))
		fmt.Fprintf(w, "  Password:       %s\n\n", r.Password.String())
	}
}

// RenderInternetPasswords writes one block per record to w.
func RenderInternetPasswords(w io.Writer, recs []records.InternetPasswordRecord) {
	for i, r := range recs {
		fmt.Fprintf(w, "Internet Password [%d]\n", i)
		fmt.Fprintf(w, "  Account:        %s\n", r.Account)
		fmt.Fprintf(w, "  Server:         %s\n", r.Server)
		fmt.Fprintf(w, "  Protocol:       %s\n", r.ProtocolType)
		fmt.Fprintf(w, "  Auth Type:      %s\n", r.AuthType)
		fmt.Fprintf(w, "  Port:           %d\n", r.Port)
		fmt.Fprintf(w, "  Path:           %s\n", r.Path)
		fmt.Fprintf(w, "  Security Domain:%s\n", r.SecurityDomain)
		fmt.Fprintf(w, "  Created:        %s\n", formatTime(r.Created))
		fmt.Fprintf(w, "  Last Modified:  %s\n", formatTime(r.LastModified))
		fmt.Fprintf(w, "  Password:       %s\n\n", r.Password.String())
	}
}

// RenderAppleSharePasswords writes one block per record to w. The
// Address column is rendered as hex: it is declared length-value in the
// header, not an integer (see design notes on the original's formatter).
func RenderAppleSharePasswords(w io.Writer, recs []records.AppleShareRecord) {
	for i, r := range recs {
		fmt.Fprintf(w, "AppleShare Password [%d]\n", i)
		fmt.Fprintf(w, "  Account:        %s\n", r.Account)
		fmt.Fprintf(w, "  Server:         %s\n", r.Server)
		fmt.Fprintf(w, "  Volume:         %s\n", r.Volume)
		fmt.Fprintf(w, "  Protocol:       %s\n", r.ProtocolType)
		fmt.Fprintf(w, "  Address:        %s\n", hex.EncodeToString(r.Address))
		fmt.Fprintf(w, "  Signature:      %s\n", r.Signature)
		fmt.Fprintf(w, "  Created:        %s\n", formatTime(r.Created))
		fmt.Fprintf(w, "  Last Modified:  %s\n", formatTime(r.LastModified))
		fmt.Fprintf(w, "  Password:       %s\n\n", r.Password.String())
	}
}

// RenderX509Certificates writes one block per record to w, base64-free:
// the DER blob is hex-encoded for terminal display.
func RenderX509Certificates(w io.Writer, recs []records.X509CertificateRecord) {
	for i, r := range recs {
		fmt.Fprintf(w, "X.509 Certificate [%d]\n", i)
		fmt.Fprintf(w, "  Print Name:     %s\n", r.PrintName)
		fmt.Fprintf(w, "  Subject:        %s\n", r.Subject)
		fmt.Fprintf(w, "  Issuer:         %s\n", r.Issuer)
		fmt.Fprintf(w, "  Serial Number:  %s\n", hex.EncodeToString(r.SerialNumber))
		fmt.Fprintf(w, "  DER (%d bytes): %s\n\n", len(r.DER), truncatedHex(r.DER))
	}
}

// RenderPublicKeys writes one block per record to w.
func RenderPublicKeys(w io.Writer, recs []records.PublicKeyRecord) {
	for i, r := range recs {
		fmt.Fprintf(w, "Public Key [%d]\n", i)
		fmt.Fprintf(w, "  Print Name:     %s\n", r.PrintName)
		fmt.Fprintf(w, "  Key Class:      %s\n", records.KeyClassName(r.KeyClass))
		fmt.Fprintf(w, "  Algorithm:      %s\n", records.AlgorithmName(r.KeyType))
		fmt.Fprintf(w, "  Key Size:       %d bits\n", r.KeySizeInBits)
		fmt.Fprintf(w, "  Key (%d bytes): %s\n\n", len(r.Key), truncatedHex(r.Key))
	}
}

// RenderPrivateKeys writes one block per record to w.
func RenderPrivateKeys(w io.Writer, recs []records.PrivateKeyRecord) {
	for i, r := range recs {
		fmt.Fprintf(w, "Private Key [%d]\n", i)
		fmt.Fprintf(w, "  Print Name:     %s\n", r.PrintName)
		fmt.Fprintf(w, "  Key Class:      %s\n", records.KeyClassName(r.KeyClass))
		fmt.Fprintf(w, "  Algorithm:      %s\n", records.AlgorithmName(r.KeyType))
		fmt.Fprintf(w, "  Key Size:       %d bits\n", r.KeySizeInBits)
		if r.Locked {
			fmt.Fprintf(w, "  Key Body:       %s\n\n", records.LockedSentinel)
			continue
		}
		fmt.Fprintf(w, "  Key Name:       %s\n", hex.EncodeToString(r.KeyName))
		fmt.Fprintf(w, "  Key Body (%d bytes): %s\n\n", len(r.KeyBody), truncatedHex(r.KeyBody))
	}
}

func truncatedHex(b []byte) string {
	const max = 64
	s := hex.EncodeToString(b)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// RenderPasswordHash writes the keychain password-hash export line,
// matching the format produced by internal/keychain/hashformat.
func RenderPasswordHash(w io.Writer, hash string) {
	fmt.Fprintln(w, strings.TrimSpace(hash))
}
