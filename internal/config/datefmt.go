package config

import (
	"fmt"
	"strings"
)

// DateLayout returns the Go time layout for a configured date format. A
// format containing "yy" is read as a Java-style pattern (yyyy-MM-dd
// HH:mm:ss), the form existing config.properties files use; anything else is
// already a Go layout.
func DateLayout(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("empty date format")
	}
	if !strings.Contains(format, "yy") {
		return format, nil
	}
	return convertPattern(format)
}

func convertPattern(pattern string) (string, error) {
	var b strings.Builder
	src := []rune(pattern)

	for i := 0; i < len(src); {
		c := src[i]

		if c == '\'' {
			// 'text' is literal; '' is a quote.
			j := i + 1
			if j < len(src) && src[j] == '\'' {
				b.WriteRune('\'')
				i += 2
				continue
			}
			for {
				if j == len(src) {
					return "", fmt.Errorf("unterminated quote in date pattern %q", pattern)
				}
				if src[j] == '\'' {
					if j+1 < len(src) && src[j+1] == '\'' {
						b.WriteRune('\'')
						j += 2
						continue
					}
					break
				}
				b.WriteRune(src[j])
				j++
			}
			i = j + 1
			continue
		}

		if !isASCIILetter(c) {
			b.WriteRune(c)
			i++
			continue
		}

		n := 1
		for i+n < len(src) && src[i+n] == c {
			n++
		}
		layout, ok := patternField(c, n)
		if !ok {
			return "", fmt.Errorf("unsupported letter %q in date pattern %q", c, pattern)
		}
		b.WriteString(layout)
		i += n
	}
	return b.String(), nil
}

// patternField maps a run of n pattern letters c to Go layout text.
func patternField(c rune, n int) (string, bool) {
	switch c {
	case 'y':
		if n == 2 {
			return "06", true
		}
		return "2006", true
	case 'M':
		switch n {
		case 1:
			return "1", true
		case 2:
			return "01", true
		case 3:
			return "Jan", true
		default:
			return "January", true
		}
	case 'd':
		if n == 1 {
			return "2", true
		}
		return "02", true
	case 'H':
		return "15", true
	case 'h':
		if n == 1 {
			return "3", true
		}
		return "03", true
	case 'm':
		if n == 1 {
			return "4", true
		}
		return "04", true
	case 's':
		if n == 1 {
			return "5", true
		}
		return "05", true
	case 'S':
		return strings.Repeat("0", n), true
	case 'a':
		return "PM", true
	case 'E':
		if n <= 3 {
			return "Mon", true
		}
		return "Monday", true
	case 'z':
		return "MST", true
	case 'Z':
		return "-0700", true
	case 'X':
		switch n {
		case 1:
			return "Z07", true
		case 2:
			return "Z0700", true
		default:
			return "Z07:00", true
		}
	}
	return "", false
}

func isASCIILetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
