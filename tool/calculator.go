package tool

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/reagent-ai/reagent/core"
)

const calculatorAllowedChars = "0123456789+-*/(). "

// NewCalculatorTool returns a tool that evaluates basic arithmetic
// expressions. Input is restricted to digits, the four operators,
// parentheses, decimal points and spaces; anything else is rejected before
// evaluation.
func NewCalculatorTool() *FunctionTool {
	return NewFunctionTool(
		"calculator",
		"Perform basic arithmetic calculations. Supports +, -, *, / and parentheses. Input should be a mathematical expression like '2 + 2' or '(10 * 5) / 2'.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"expression": map[string]any{
					"type":        "string",
					"description": "The mathematical expression to evaluate",
				},
			},
			"required": []string{"expression"},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			expr, _ := args["expression"].(string)
			for _, r := range expr {
				if !strings.ContainsRune(calculatorAllowedChars, r) {
					return nil, fmt.Errorf("invalid character %q in expression", r)
				}
			}
			result, err := evalExpression(expr)
			if err != nil {
				return nil, err
			}
			return formatNumber(result), nil
		},
	)
}

// NewWordLengthTool returns a tool that counts the characters in a word.
func NewWordLengthTool() *FunctionTool {
	return NewFunctionTool(
		"get_word_length",
		"Return the number of characters in a word.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"word": map[string]any{
					"type":        "string",
					"description": "The word to measure",
				},
			},
			"required": []string{"word"},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			word, _ := args["word"].(string)
			return len([]rune(word)), nil
		},
	)
}

// formatNumber renders integral results without a trailing ".0" so the model
// sees "4" rather than "4.000000".
func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// exprParser is a recursive descent parser over a whitelisted arithmetic
// grammar:
//
//	expr   = term   { ("+" | "-") term }
//	term   = factor { ("*" | "/") factor }
//	factor = number | "(" expr ")" | ("+" | "-") factor
type exprParser struct {
	input string
	pos   int
}

func evalExpression(input string) (float64, error) {
	p := &exprParser{input: input}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.pos != len(p.input) {
		return 0, fmt.Errorf("unexpected character %q at position %d", p.input[p.pos], p.pos)
	}
	return v, nil
}

func (p *exprParser) skipSpaces() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func (p *exprParser) peek() (byte, bool) {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0, false
	}
	return p.input[p.pos], true
}

func (p *exprParser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.peek()
		if !ok || (op != '+' && op != '-') {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

func (p *exprParser) parseTerm() (float64, error) {
	left, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.peek()
		if !ok || (op != '*' && op != '/') {
			return left, nil
		}
		p.pos++
		right, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			left *= right
		} else {
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left /= right
		}
	}
}

func (p *exprParser) parseFactor() (float64, error) {
	ch, ok := p.peek()
	if !ok {
		return 0, fmt.Errorf("unexpected end of expression")
	}
	switch {
	case ch == '+':
		p.pos++
		return p.parseFactor()
	case ch == '-':
		p.pos++
		v, err := p.parseFactor()
		return -v, err
	case ch == '(':
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		next, ok := p.peek()
		if !ok || next != ')' {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	default:
		return p.parseNumber()
	}
}

func (p *exprParser) parseNumber() (float64, error) {
	p.skipSpaces()
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if (c < '0' || c > '9') && c != '.' {
			break
		}
		p.pos++
	}
	if start == p.pos {
		return 0, fmt.Errorf("expected number at position %d", start)
	}
	v, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", p.input[start:p.pos])
	}
	return v, nil
}
