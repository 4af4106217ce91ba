package parser

import (
	"strconv"
	"strings"

	"github.com/wippyai/gpu-layout/errors"
	"github.com/wippyai/gpu-layout/schema"
	"github.com/wippyai/gpu-layout/schema/dsl/internal/token"
)

type Parser struct {
	tokens []token.Token
	pos    int
}

func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse reads a whole schema: either a bare list of declarations or a single
// `mod name { ... }` block around them.
func (p *Parser) Parse() (*schema.Schema, error) {
	s := &schema.Schema{}

	if t := p.peek(); t != nil && t.Type == token.Ident && t.Value == "mod" {
		p.next()
		name, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		s.Name = name.Value
		if _, err := p.expect(token.LBrace); err != nil {
			return nil, err
		}
		if err := p.parseDecls(s, true); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBrace); err != nil {
			return nil, err
		}
	} else if err := p.parseDecls(s, false); err != nil {
		return nil, err
	}

	if t := p.peek(); t != nil {
		return nil, errors.Syntax(t.Line, "unexpected %q after end of schema", t.Value)
	}
	return s, nil
}

// ParseType reads exactly one field type and nothing else.
func (p *Parser) ParseType() (schema.FieldType, error) {
	ft, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t != nil {
		return nil, errors.Syntax(t.Line, "unexpected %q after field type", t.Value)
	}
	return ft, nil
}

func (p *Parser) peek() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *Parser) peekIs(typ token.Type) bool {
	t := p.peek()
	return t != nil && t.Type == typ
}

func (p *Parser) next() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	t := &p.tokens[p.pos]
	p.pos++
	return t
}

func (p *Parser) expect(typ token.Type) (*token.Token, error) {
	t := p.next()
	if t == nil {
		return nil, p.eof("expected %v", typ)
	}
	if t.Type != typ {
		return nil, errors.Syntax(t.Line, "expected %v, got %q", typ, t.Value)
	}
	return t, nil
}

func (p *Parser) eof(format string, args ...any) *errors.Error {
	line := 0
	if n := len(p.tokens); n > 0 {
		line = p.tokens[n-1].Line
	}
	err := errors.Syntax(line, format, args...)
	err.Detail = "unexpected end of input: " + err.Detail
	return err
}

func (p *Parser) parseDecls(s *schema.Schema, inModule bool) error {
	for {
		t := p.peek()
		if t == nil || (inModule && t.Type == token.RBrace) {
			return nil
		}
		d, err := p.parseDecl()
		if err != nil {
			return err
		}
		s.Decls = append(s.Decls, d)
	}
}

func (p *Parser) parseDecl() (schema.Decl, error) {
	t, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	switch t.Value {
	case "struct":
		return p.parseStruct(t.Line)
	case "enum":
		return p.parseEnum(t.Line)
	default:
		return nil, errors.Syntax(t.Line, "expected 'struct' or 'enum', got %q", t.Value)
	}
}

func (p *Parser) parseStruct(line int) (*schema.StructDef, error) {
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}

	def := &schema.StructDef{Name: name.Value, Line: line}
	for !p.peekIs(token.RBrace) {
		f, err := p.parseField(def.Name)
		if err != nil {
			return nil, err
		}
		def.Fields = append(def.Fields, f)
		if err := p.parseListSep(token.RBrace); err != nil {
			return nil, err
		}
	}
	p.next()
	return def, nil
}

func (p *Parser) parseField(structName string) (schema.Field, error) {
	t := p.next()
	if t == nil {
		return schema.Field{}, p.eof("expected field in struct %s", structName)
	}
	if t.Type == token.Colon {
		return schema.Field{}, errors.Syntax(t.Line, "missing field name in struct %s", structName)
	}
	if t.Type != token.Ident {
		return schema.Field{}, errors.Syntax(t.Line, "expected field name in struct %s, got %q", structName, t.Value)
	}
	if !p.peekIs(token.Colon) {
		return schema.Field{}, errors.Syntax(t.Line, "missing field name before %q in struct %s", t.Value, structName)
	}
	p.next()

	ft, err := p.parseType()
	if err != nil {
		return schema.Field{}, err
	}
	return schema.Field{Name: t.Value, Type: ft, Line: t.Line}, nil
}

func (p *Parser) parseEnum(line int) (*schema.EnumDef, error) {
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}

	def := &schema.EnumDef{Name: name.Value, Line: line}
	for !p.peekIs(token.RBrace) {
		v, err := p.parseVariant(def.Name)
		if err != nil {
			return nil, err
		}
		def.Variants = append(def.Variants, v)
		if err := p.parseListSep(token.RBrace); err != nil {
			return nil, err
		}
	}
	p.next()
	return def, nil
}

func (p *Parser) parseVariant(enumName string) (schema.Variant, error) {
	t, err := p.expect(token.Ident)
	if err != nil {
		return schema.Variant{}, err
	}
	v := schema.Variant{Name: t.Value, Line: t.Line}

	if p.peekIs(token.LBrace) {
		return v, errors.Syntax(t.Line, "variant %s::%s: named payload fields are not supported", enumName, t.Value)
	}
	if !p.peekIs(token.LParen) {
		return v, nil
	}
	p.next()
	for !p.peekIs(token.RParen) {
		ft, err := p.parseType()
		if err != nil {
			return v, err
		}
		v.Payload = append(v.Payload, ft)
		if err := p.parseListSep(token.RParen); err != nil {
			return v, err
		}
	}
	p.next()
	return v, nil
}

// parseListSep consumes a ',' between list items, or leaves the closing
// token in place for the caller.
func (p *Parser) parseListSep(closing token.Type) error {
	t := p.peek()
	if t == nil {
		return p.eof("expected ',' or %v", closing)
	}
	switch t.Type {
	case token.Comma:
		p.next()
		if p.peek() == nil {
			return p.eof("expected %v", closing)
		}
		return nil
	case closing:
		return nil
	default:
		return errors.Syntax(t.Line, "expected ',' or %v, got %q", closing, t.Value)
	}
}

func (p *Parser) parseType() (schema.FieldType, error) {
	t := p.next()
	if t == nil {
		return nil, p.eof("expected field type")
	}

	switch t.Type {
	case token.Ident:
		if kind, ok := schema.LookupScalar(t.Value); ok {
			return schema.Scalar{Kind: kind}, nil
		}
		if p.peekIs(token.LAngle) {
			return p.parseReference(t)
		}
		return schema.NamedRef{Name: t.Value}, nil
	case token.LBracket:
		return p.parseVector(t.Line)
	default:
		return nil, errors.Syntax(t.Line, "unsupported field type starting with %q", t.Value)
	}
}

func (p *Parser) parseReference(wrapper *token.Token) (schema.FieldType, error) {
	p.next()
	if p.peekIs(token.RAngle) {
		return nil, errors.Syntax(wrapper.Line, "%s<> needs exactly one type argument", wrapper.Value)
	}
	inner, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if p.peekIs(token.Comma) {
		return nil, errors.Syntax(wrapper.Line, "%s<...> takes exactly one type argument", wrapper.Value)
	}
	if _, err := p.expect(token.RAngle); err != nil {
		return nil, err
	}
	return schema.Reference{Target: inner}, nil
}

func (p *Parser) parseVector(line int) (schema.FieldType, error) {
	elem, err := p.parseType()
	if err != nil {
		return nil, err
	}
	scalar, ok := elem.(schema.Scalar)
	if !ok {
		return nil, errors.Syntax(line, "array element must be a scalar, got %s", elem)
	}
	if p.peekIs(token.RBracket) {
		return nil, errors.Syntax(line, "variable-length array [%s] is not supported", elem)
	}
	if _, err := p.expect(token.Semicolon); err != nil {
		return nil, err
	}

	n := p.next()
	if n == nil {
		return nil, p.eof("expected array length")
	}
	if n.Type != token.Number {
		return nil, errors.Syntax(n.Line, "array length must be an integer literal, got %q", n.Value)
	}
	length, err := strconv.ParseUint(strings.ReplaceAll(n.Value, "_", ""), 10, 32)
	if err != nil {
		return nil, errors.Syntax(n.Line, "array length %s out of range", n.Value)
	}
	if length == 0 {
		return nil, errors.Syntax(n.Line, "array length must be positive")
	}
	if _, err := p.expect(token.RBracket); err != nil {
		return nil, err
	}
	return schema.Vector{Elem: scalar.Kind, Len: uint32(length)}, nil
}
