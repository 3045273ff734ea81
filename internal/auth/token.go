package auth

import (
	"sort"

	"golang.org/x/crypto/bcrypt"

	"botpanel/internal/conf"
	"botpanel/internal/errors"
)

// AddToken creates a new access token for name, saves its hash to the config
// file and returns the plain token. It is shown once and never stored.
func AddToken(name string) (string, error) {
	token, err := GenerateToken()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrAuth, "failed to generate token", "")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrAuth, "failed to hash token", "")
	}

	newConf := conf.Read()
	newConf.Auth.Tokens[name] = string(hash)
	if err := conf.Write(newConf); err != nil {
		return "", err
	}
	Validated.Forget()
	return token, nil
}

// RemoveToken deletes the token called name.
func RemoveToken(name string) error {
	newConf := conf.Read()
	if _, ok := newConf.Auth.Tokens[name]; !ok {
		return errors.New(errors.ErrAuth, "no token named "+name, "Run `panel token list` to see token names")
	}
	delete(newConf.Auth.Tokens, name)
	if err := conf.Write(newConf); err != nil {
		return err
	}
	Validated.Forget()
	return nil
}

// TokenNames lists configured token names in order.
func TokenNames() []string {
	tokens := conf.GetTokens()
	names := make([]string, 0, len(tokens))
	for name := range tokens {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open reports whether no tokens are configured, in which case every request
// is let through.
func Open() bool {
	return len(conf.GetTokens()) == 0
}

// ValidateToken checks token against every configured hash and returns the
// name it belongs to. Successful checks are cached for a day.
func ValidateToken(token string) (string, bool) {
	tokens := conf.GetTokens()
	if len(tokens) == 0 {
		return "", true
	}
	if token == "" {
		return "", false
	}
	if name, ok := Validated.Lookup(token); ok {
		if _, still := tokens[name]; still {
			return name, true
		}
	}
	for name, hash := range tokens {
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil {
			Validated.Remember(token, name)
			return name, true
		}
	}
	return "", false
}
