package iconify

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/gotailwindcss/iconify/twiconset"
	"github.com/rs/zerolog"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

var (
	pluginAtRule   = []byte("@plugin")
	tailwindAtRule = []byte("@tailwind")
	applyAtRule    = []byte("@apply")
)

// New returns an initialized instance of Converter.  The out param
// indicates where output is written, it must not be nil.  Icon sets are
// loaded with loader, if nil each plugin gets a loader backed by
// twiconset.DefaultCache.
func New(out io.Writer, loader *twiconset.Loader) *Converter {
	if out == nil {
		panic(fmt.Errorf("iconify.Converter.out is nil, cannot continue"))
	}
	return &Converter{
		out:    out,
		loader: loader,
		log:    zerolog.Nop(),
	}
}

// Converter does processing of CSS input files and writes a single output
// CSS file with the @plugin, @tailwind and @apply directives processed.
// Inputs are processed in the order they are added (see e.g. AddReader()).
//
// Every @plugin block whose name contains "iconify" registers a Plugin with
// the block's declarations as configuration.  The generated rules are written
// at @tailwind components and @tailwind utilities, or appended to the output
// if neither directive is present.
type Converter struct {
	out          io.Writer
	inputs       []*input
	loader       *twiconset.Loader
	options      map[string]any
	candidates   []string
	postProcFunc func(out io.Writer, in io.Reader) error
	log          zerolog.Logger
	dist         Dist // generated rules, set up by Run
	sawTailwind  bool
	*applier          // set up by Run
}

type input struct {
	name     string    // display file name
	r        io.Reader // read input from here
	isInline bool
	data     []byte // contents of r, read by Run
}

// AddReader adds an input source. The name is used only in error
// messages to indicate the source. And r is the CSS source to be processed,
// it must not be nil.  If isInline it indicates this CSS is from an HTML
// style attribute, otherwise it's from the contents of a style tag or a
// standlone CSS file.
func (c *Converter) AddReader(name string, r io.Reader, isInline bool) {
	if r == nil {
		panic(fmt.Errorf("iconify.Converter.AddReader(%q, r): r is nil, cannot continue", name))
	}
	c.inputs = append(c.inputs, &input{name: name, r: r, isInline: isInline})
}

// SetPluginOptions sets plugin configuration, e.g. from a config file.  Keys
// set in a @plugin block take precedence.  If no input has a @plugin block and
// options were set, one plugin is registered with these options alone.
func (c *Converter) SetPluginOptions(raw map[string]any) {
	c.options = raw
}

// SetCandidates sets the class names which dynamic icon classes are
// generated for, see twpurge.
func (c *Converter) SetCandidates(classes []string) {
	c.candidates = classes
}

// SetPostProcFunc sets a function that is called with the converted CSS
// before it is written to the output, e.g. a minifier.
func (c *Converter) SetPostProcFunc(f func(out io.Writer, in io.Reader) error) {
	c.postProcFunc = f
}

// SetLogger sets the logger used for warnings during conversion.
func (c *Converter) SetLogger(log zerolog.Logger) {
	c.log = log
}

// Run performs the conversion.  The output is written to the writer specified
// in New().
func (c *Converter) Run() (reterr error) {

	if c.out == nil {
		panic(fmt.Errorf("iconify.Converter.out is nil, cannot continue"))
	}

	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(error)
			if ok {
				reterr = e
			} else {
				reterr = fmt.Errorf("%v", r)
			}
		}
	}()

	for _, in := range c.inputs {
		if in.data != nil {
			continue
		}
		b, err := io.ReadAll(in.r)
		if err != nil {
			return fmt.Errorf("%s: %w", in.name, err)
		}
		in.data = b
	}

	reg := NewRegistry()
	reg.SetCandidates(c.candidates)
	registered := 0
	for _, in := range c.inputs {
		blocks, err := scanPluginBlocks(in.name, in.data, in.isInline)
		if err != nil {
			return err
		}
		for _, block := range blocks {
			if err := c.register(reg, block); err != nil {
				return fmt.Errorf("%s: %w", in.name, err)
			}
			registered++
		}
	}
	if registered == 0 && c.options != nil {
		if err := c.register(reg, nil); err != nil {
			return err
		}
		registered++
	}
	c.dist = reg
	c.applier = &applier{reg: reg}
	c.sawTailwind = false

	var w io.Writer = c.out
	var postBuf *bytes.Buffer
	if c.postProcFunc != nil {
		postBuf = new(bytes.Buffer)
		w = postBuf
	}

	bw := bufio.NewWriter(w)
	err := c.convert(bw, registered > 0)
	if ferr := bw.Flush(); err == nil {
		err = ferr
	}
	if err != nil {
		return err
	}

	if postBuf != nil {
		return c.postProcFunc(c.out, postBuf)
	}
	return nil
}

func (c *Converter) register(reg *Registry, block map[string]any) error {
	raw := make(map[string]any, len(c.options)+len(block))
	for k, v := range c.options {
		raw[k] = v
	}
	for k, v := range block {
		raw[k] = v
	}
	p, err := NewPlugin(raw, WithLoader(c.loader), WithLogger(c.log))
	if err != nil {
		return err
	}
	p.Register(reg)
	return nil
}

func (c *Converter) convert(w io.Writer, hasPlugins bool) error {
	for _, in := range c.inputs {
		p := css.NewParser(parse.NewInputBytes(in.data), in.isInline)
		if err := c.runParse(in.name, p, w); err != nil {
			return err
		}
	}
	if hasPlugins && !c.sawTailwind {
		for _, section := range []string{"components", "utilities"} {
			if err := c.writeSection(section, w); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Converter) writeSection(section string, w io.Writer) error {
	rc, err := c.dist.OpenDist(section)
	if err != nil {
		return err
	}
	defer rc.Close()

	subp := css.NewParser(parse.NewInput(rc), false)
	return c.runParse("[iconify/"+section+"]", subp, w)
}

func (c *Converter) runParse(name string, p *css.Parser, w io.Writer) error {

	skipping := false // inside an iconify @plugin block

	for {

		gt, tt, data := p.Next()

		if skipping && gt != css.EndAtRuleGrammar && gt != css.ErrorGrammar {
			continue
		}

		switch gt {

		case css.ErrorGrammar:
			err := p.Err()
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("%s: %w", name, err)

		case css.AtRuleGrammar:

			switch {

			case bytes.Equal(data, tailwindAtRule):
				tokens := trimTokenWs(p.Values())
				if len(tokens) != 1 {
					return fmt.Errorf("%s: @tailwind should be followed by exactly one token, instead found: %v", name, tokens)
				}
				token := tokens[0]
				if token.TokenType != css.IdentToken {
					return fmt.Errorf("%s: @tailwind should be followed by an identifier token, instead found: %v", name, token)
				}
				switch section := string(token.Data); section {
				case "base", "components", "utilities":
					c.sawTailwind = true
					if err := c.writeSection(section, w); err != nil {
						return err
					}
				default:
					return fmt.Errorf("%s: @tailwind followed by unknown identifier: %s", name, token.Data)
				}

			case bytes.Equal(data, applyAtRule):

				classes := tokensToClassNames(p.Values())
				b, err := c.applier.apply(classes)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}

				_, err = w.Write(b)
				if err != nil {
					return err
				}

			case bytes.Equal(data, pluginAtRule) && isIconifyPlugin(p.Values()):
				// registered by Run

			default: // other @ rules just get copied verbatim
				err := write(w, data, p.Values(), ';')
				if err != nil {
					return err
				}

			}

		case css.BeginAtRuleGrammar:
			if bytes.Equal(data, pluginAtRule) && isIconifyPlugin(p.Values()) {
				skipping = true
				continue
			}
			err := write(w, data, p.Values(), '{')
			if err != nil {
				return err
			}

		case css.BeginRulesetGrammar:
			err := write(w, data, p.Values(), '{')
			if err != nil {
				return err
			}

		case css.DeclarationGrammar:
			err := write(w, data, ':', p.Values(), ';')
			if err != nil {
				return err
			}

		case css.QualifiedRuleGrammar:
			// NOTE: this is used for rules like: b,strong { ...
			// we'll get a QualifiedRuleGrammar entry with empty data and p.Values()
			// has the 'b' in it.
			err := write(w, p.Values(), ',')
			if err != nil {
				return err
			}

		case css.CustomPropertyGrammar:
			err := write(w, data, ':', p.Values(), ';')
			if err != nil {
				return err
			}

		case css.TokenGrammar:
			// contents of unknown at-rule blocks, <!-- and --> are dropped
			if tt == css.CDOToken || tt == css.CDCToken {
				continue
			}
			err := write(w, data)
			if err != nil {
				return err
			}

		case css.CommentGrammar:
			continue // strip comments

		case css.EndAtRuleGrammar:
			if skipping {
				skipping = false
				continue
			}
			err := write(w, data)
			if err != nil {
				return err
			}

		case css.EndRulesetGrammar:
			err := write(w, data)
			if err != nil {
				return err
			}

		default: // verify we aren't missing a type
			panic(fmt.Errorf("%s: unexpected grammar type %v", name, gt))

		}

	}

}

// isIconifyPlugin reports whether the @plugin prelude names this plugin.
func isIconifyPlugin(tokens []css.Token) bool {
	for _, tok := range trimTokenWs(tokens) {
		if bytes.Contains(bytes.ToLower(tok.Data), []byte("iconify")) {
			return true
		}
	}
	return false
}

// scanPluginBlocks returns the configuration of every iconify @plugin rule
// in b.  A @plugin rule without a block yields an empty configuration.
func scanPluginBlocks(name string, b []byte, isInline bool) ([]map[string]any, error) {
	var ret []map[string]any
	var cur *pluginBlock

	p := css.NewParser(parse.NewInputBytes(b), isInline)
	for {
		gt, tt, data := p.Next()

		switch gt {

		case css.ErrorGrammar:
			err := p.Err()
			if errors.Is(err, io.EOF) {
				return ret, nil
			}
			return nil, fmt.Errorf("%s: %w", name, err)

		case css.AtRuleGrammar:
			if bytes.Equal(data, pluginAtRule) && isIconifyPlugin(p.Values()) {
				ret = append(ret, map[string]any{})
			}

		case css.BeginAtRuleGrammar:
			if bytes.Equal(data, pluginAtRule) && isIconifyPlugin(p.Values()) {
				cur = &pluginBlock{m: make(map[string]any)}
			}

		case css.TokenGrammar:
			if cur != nil {
				cur.token(tt, data)
			}

		case css.EndAtRuleGrammar:
			if cur != nil {
				cur.flush()
				ret = append(ret, cur.m)
				cur = nil
			}

		}
	}
}

// pluginBlock collects "key: value;" pairs from the tokens of a @plugin
// block.
type pluginBlock struct {
	m     map[string]any
	key   string
	colon bool
	depth int
	value []css.Token
}

func (b *pluginBlock) token(tt css.TokenType, data []byte) {
	if !b.colon {
		switch tt {
		case css.ColonToken:
			b.colon = true
		case css.IdentToken:
			b.key += string(data)
		case css.SemicolonToken:
			b.flush()
		}
		return
	}

	switch tt {
	case css.SemicolonToken:
		if b.depth == 0 {
			b.flush()
			return
		}
	case css.FunctionToken, css.LeftParenthesisToken:
		b.depth++
	case css.RightParenthesisToken:
		b.depth--
	}
	b.value = append(b.value, css.Token{TokenType: tt, Data: append([]byte(nil), data...)})
}

func (b *pluginBlock) flush() {
	if b.key != "" && b.colon {
		b.m[b.key] = tokensToValue(b.value)
	}
	b.key, b.colon, b.depth, b.value = "", false, 0, nil
}

// tokensToValue converts a declaration value to configuration: a list for
// comma separated values, bool for true/false, float64 for numbers and a
// string otherwise.
func tokensToValue(tokens []css.Token) any {
	var parts []any
	var cur []css.Token
	depth := 0
	for _, tok := range tokens {
		switch tok.TokenType {
		case css.FunctionToken, css.LeftParenthesisToken:
			depth++
		case css.RightParenthesisToken:
			depth--
		case css.CommaToken:
			if depth == 0 {
				parts = append(parts, tokenValue(cur))
				cur = nil
				continue
			}
		}
		cur = append(cur, tok)
	}
	parts = append(parts, tokenValue(cur))
	if len(parts) == 1 {
		return parts[0]
	}
	return parts
}

func tokenValue(tokens []css.Token) any {
	tokens = trimTokenWs(tokens)
	if len(tokens) == 1 {
		tok := tokens[0]
		switch tok.TokenType {
		case css.StringToken:
			if len(tok.Data) >= 2 {
				return string(tok.Data[1 : len(tok.Data)-1])
			}
		case css.IdentToken:
			switch string(tok.Data) {
			case "true":
				return true
			case "false":
				return false
			}
		case css.NumberToken:
			if f, err := strconv.ParseFloat(string(tok.Data), 64); err == nil {
				return f
			}
		}
	}
	var buf bytes.Buffer
	for _, tok := range tokens {
		buf.Write(tok.Data)
	}
	return buf.String()
}

// a general purpose write so we can just do one error check,
// check later for performance implications of interface{}
// and fmt.Fprintf here but I suspect it'll be minimal
func write(w io.Writer, what ...interface{}) error {
	for _, i := range what {

		switch v := i.(type) {

		case byte:
			fmt.Fprintf(w, "%c", v)

		case rune:
			fmt.Fprintf(w, "%c", v)

		case []byte:
			fmt.Fprintf(w, "%s", v)

		case []css.Token:
			err := writeTokens(w, v...)
			if err != nil {
				return err
			}

		default:
			_, err := fmt.Fprint(w, v)
			if err != nil {
				return err
			}
		}

	}
	return nil
}

func writeTokens(w io.Writer, tokens ...css.Token) error {
	for _, val := range tokens {
		_, err := w.Write(val.Data)
		if err != nil {
			return err
		}
	}
	return nil
}

func trimTokenWs(tokens []css.Token) []css.Token {
	for len(tokens) > 0 && tokens[0].TokenType == css.WhitespaceToken {
		tokens = tokens[1:]
	}
	for len(tokens) > 0 && tokens[len(tokens)-1].TokenType == css.WhitespaceToken {
		tokens = tokens[:len(tokens)-1]
	}
	return tokens
}

// tokensToClassNames joins the tokens between whitespace, so that
// "icon-[mdi--home]" (an ident, brackets and another ident) is one name.
func tokensToClassNames(tokens []css.Token) []string {
	ret := make([]string, 0, len(tokens)/2)
	var cur []byte
	for _, token := range tokens {
		switch token.TokenType {
		case css.WhitespaceToken, css.CommentToken:
			if len(cur) > 0 {
				ret = append(ret, string(cur))
				cur = cur[:0]
			}
		default:
			cur = append(cur, token.Data...)
		}
	}
	if len(cur) > 0 {
		ret = append(ret, string(cur))
	}
	return ret
}
