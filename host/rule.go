package host

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xy-planning-network/signpost"
)

// AnyPort is the port flag of a rule matching requests made to any port.
const AnyPort = "*"

type segmentKind int

const (
	literal segmentKind = iota
	wildcard
	capture
)

type segment struct {
	kind segmentKind
	text string
}

// A part of a compiled target; either literal text or the name of a capture.
type part struct {
	capture bool
	text    string
}

// A Rule is a compiled domain pattern.
type Rule struct {
	// Pattern is the rule as written.
	Pattern string

	// PortFlag is AnyPort or a port number.
	PortFlag string

	// PortVar names the capture the port is stored under, if any.
	PortVar string

	// Total is the number of labels in the domain pattern.
	Total int

	// Wildcards is the number of "*" and "{name}" labels in the domain pattern.
	Wildcards int

	segments []segment
	target   []part
	static   bool
}

// CompileRule parses pattern into a Rule routing matching hosts to target.
func CompileRule(pattern, target string) (Rule, error) {
	r := Rule{Pattern: pattern, PortFlag: AnyPort}

	domain := strings.ToLower(strings.TrimSpace(pattern))
	if i := strings.LastIndex(domain, ":"); i >= 0 {
		port := domain[i+1:]
		domain = domain[:i]

		switch name, ok := captureName(port); {
		case ok:
			r.PortVar = name
		case port == "" || port == AnyPort:
		default:
			if _, err := strconv.Atoi(port); err != nil {
				return Rule{}, fmt.Errorf("%w: port %q in %q", signpost.ErrBadConfig, port, pattern)
			}
			r.PortFlag = port
		}
	}

	if domain == "" {
		return Rule{}, fmt.Errorf("%w: empty domain in %q", signpost.ErrBadConfig, pattern)
	}

	for _, label := range strings.Split(domain, ".") {
		switch name, ok := captureName(label); {
		case label == "":
			return Rule{}, fmt.Errorf("%w: empty label in %q", signpost.ErrBadConfig, pattern)
		case label == "*":
			r.segments = append(r.segments, segment{kind: wildcard})
			r.Wildcards++
		case ok:
			r.segments = append(r.segments, segment{kind: capture, text: name})
			r.Wildcards++
		default:
			r.segments = append(r.segments, segment{kind: literal, text: label})
		}
	}

	r.Total = len(r.segments)
	r.target = compileTarget(target)
	r.static = true
	for _, p := range r.target {
		if p.capture {
			r.static = false
		}
	}

	return r, nil
}

// match reports whether labels match r positionally, returning any captured values.
func (r Rule) match(labels []string, port string) (map[string]string, bool) {
	if len(labels) != r.Total {
		return nil, false
	}

	if r.PortFlag != AnyPort && r.PortFlag != port {
		return nil, false
	}

	caps := make(map[string]string)
	for i, seg := range r.segments {
		switch seg.kind {
		case literal:
			if !strings.EqualFold(seg.text, labels[i]) {
				return nil, false
			}
		case capture:
			caps[seg.text] = labels[i]
		}
	}

	if r.PortVar != "" {
		caps[r.PortVar] = port
	}

	return caps, true
}

// expand substitutes captured values into the target.
//
// Names without a captured value are left as written.
func (r Rule) expand(caps map[string]string) string {
	var b strings.Builder
	for _, p := range r.target {
		if !p.capture {
			b.WriteString(p.text)
			continue
		}

		if v, ok := caps[p.text]; ok {
			b.WriteString(v)
			continue
		}

		b.WriteString("{" + p.text + "}")
	}

	return b.String()
}

// outranks asserts whether r takes priority over other when both match the same host.
func (r Rule) outranks(other Rule) bool {
	if r.Total != other.Total {
		return r.Total > other.Total
	}

	if r.Wildcards != other.Wildcards {
		return r.Wildcards < other.Wildcards
	}

	if r.static != other.static {
		return r.static
	}

	return r.PortFlag != AnyPort && other.PortFlag == AnyPort
}

func compileTarget(target string) []part {
	var parts []part
	for target != "" {
		open := strings.Index(target, "{")
		if open < 0 {
			parts = append(parts, part{text: target})
			break
		}

		end := strings.Index(target[open:], "}")
		if end < 0 {
			parts = append(parts, part{text: target})
			break
		}

		if open > 0 {
			parts = append(parts, part{text: target[:open]})
		}

		name := target[open+1 : open+end]
		if name == "" {
			parts = append(parts, part{text: "{}"})
		} else {
			parts = append(parts, part{capture: true, text: name})
		}

		target = target[open+end+1:]
	}

	return parts
}

func captureName(s string) (string, bool) {
	if len(s) > 2 && strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		return s[1 : len(s)-1], true
	}

	return "", false
}
