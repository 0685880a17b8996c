/*
Package lexmach compiles token patterns into a lexmachine DFA and offers the
result as a scanner.Tokenizer.

For more information on lexmachine, see e.g.
https://hackthology.com/how-to-tokenize-complex-strings-with-lexmachine.html

Clients describe their tokens as a table of patterns. A pattern with token
type Skip drops its matches (white space, comments). Literals are matched
verbatim and take precedence over patterns.

	lx, err := lexmach.Compile([]lexmach.Pattern{
		{Regex: `;[^\n]*\n?`, Type: lexmach.Skip},
		{Regex: `[a-z]+`, Type: tokAtom},
		{Regex: `( |\t|\n|\r)+`, Type: lexmach.Skip},
	}, map[string]scanner.TokType{"(": tokOpen, ")": tokClose})

Compile returns an error if the DFA cannot be built. A compiled lexer is
read-only and may be shared between goroutines; scanners are created per
input:

	scan, err := lx.Scanner("(state texas)")

Clients which need all tokens at once use

	tokens, err := lx.Tokens("(state texas)")

Tokens fails on the first character no pattern matches, while a Scanner
reports it to its error handler and continues.

________________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lexmach
