package grammar

import (
	"strconv"
	"strings"

	"github.com/npillmayer/scfg/mrl"
)

// WildcardClass is a class of MR terminals. A wildcard on the MR side of a rule
// matches every MR terminal of its class. Wildcards on the NL side copy the
// matched terminal, see Word.
type WildcardClass struct {
	Name  string
	Match func(token string) bool
}

// Word returns the NL word for a matched MR terminal: quotes are stripped and
// underscores are replaced by blanks.
func (wc WildcardClass) Word(token string) string {
	return strings.ReplaceAll(mrl.Unquote(token), "_", " ")
}

// Token is the inverse of Word: it returns the MR terminal of the class a
// phrase of NL words denotes. Blanks become underscores; if the result does not
// match the class, a quoted version is tried.
func (wc WildcardClass) Token(phrase string) (string, bool) {
	tok := strings.ReplaceAll(phrase, " ", "_")
	if wc.Match(tok) {
		return tok, true
	}
	if q := "'" + tok + "'"; wc.Match(q) {
		return q, true
	}
	return "", false
}

// Built-in wildcard classes. Every grammar knows them, in this order.
var builtinWildcards = []WildcardClass{
	{Name: "num", Match: isNumber},
	{Name: "str", Match: isString},
	{Name: "any", Match: isAtom},
}

func isNumber(token string) bool {
	_, err := strconv.ParseFloat(token, 64)
	return err == nil
}

func isString(token string) bool {
	return len(token) >= 2 && mrl.Unquote(token) != token
}

func isAtom(token string) bool {
	return token != "" && token != "(" && token != ")" && !strings.HasPrefix(token, "$")
}
