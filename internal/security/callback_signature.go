package security

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

var (
	ErrMissingSignature = errors.New("callback carries no verify_sign/verify_key")
	ErrBadSignature     = errors.New("callback signature mismatch")
	ErrUnsignedField    = errors.New("callback verify_key omits a reconciled field")
)

// signedFields are the callback fields reconciliation acts on; verify_key
// must cover all of them.
var signedFields = []string{"tran_id", "value_a", "status", "amount", "currency"}

// CallbackVerifier checks the verify_sign SSLCommerz attaches to every callback:
// md5 over the fields named in verify_key plus md5(store password), sorted by key.
type CallbackVerifier struct {
	passwdHash string
}

func NewCallbackVerifier(storePassword string) *CallbackVerifier {
	return &CallbackVerifier{passwdHash: md5hex(storePassword)}
}

func md5hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func (v *CallbackVerifier) Sign(form url.Values, keys []string) string {
	fields := make(map[string]string, len(keys)+1)
	for _, k := range keys {
		fields[k] = form.Get(k)
	}
	fields["store_passwd"] = v.passwdHash

	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, k := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(fields[k])
	}
	return md5hex(b.String())
}

func (v *CallbackVerifier) Verify(form url.Values) error {
	sig, keyList := form.Get("verify_sign"), form.Get("verify_key")
	if sig == "" || keyList == "" {
		return ErrMissingSignature
	}
	keys := strings.Split(keyList, ",")
	covered := make(map[string]bool, len(keys))
	for _, k := range keys {
		covered[strings.TrimSpace(k)] = true
	}
	for _, f := range signedFields {
		if !covered[f] {
			return fmt.Errorf("%w: %s", ErrUnsignedField, f)
		}
	}
	want := v.Sign(form, keys)
	if subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(sig))) != 1 {
		return ErrBadSignature
	}
	return nil
}
