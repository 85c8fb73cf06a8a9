package mib

import "fmt"

// Severity levels for diagnostics. Lower values are more severe.
type Severity int

const (
	SeverityError   Severity = 0 // input was dropped or could not be placed
	SeverityWarning Severity = 1 // input was accepted with changed meaning
	SeverityInfo    Severity = 2 // informational notice
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return fmt.Sprintf("Severity(%d)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// Kind identifies what a declaration or resolved node represents.
type Kind int

const (
	KindUnknown           Kind = iota
	KindBaseline               // built-in root, not declared by any module
	KindIdentifier             // plain OBJECT IDENTIFIER value assignment
	KindModuleIdentity         // MODULE-IDENTITY
	KindObjectIdentity         // OBJECT-IDENTITY
	KindObjectType             // OBJECT-TYPE
	KindNotification           // NOTIFICATION-TYPE or TRAP-TYPE
	KindObjectGroup            // OBJECT-GROUP
	KindNotificationGroup      // NOTIFICATION-GROUP
	KindCompliance             // MODULE-COMPLIANCE
	KindCapabilities           // AGENT-CAPABILITIES
)

var kindNames = [...]string{
	KindUnknown:           "unknown",
	KindBaseline:          "baseline",
	KindIdentifier:        "identifier",
	KindModuleIdentity:    "module-identity",
	KindObjectIdentity:    "object-identity",
	KindObjectType:        "object-type",
	KindNotification:      "notification",
	KindObjectGroup:       "object-group",
	KindNotificationGroup: "notification-group",
	KindCompliance:        "compliance",
	KindCapabilities:      "capabilities",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ParseKind returns the Kind with the given name.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	v, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// IsReferenceOnly reports whether declarations of this kind only anchor
// an OID and carry no definition worth comparing across files.
func (k Kind) IsReferenceOnly() bool {
	switch k {
	case KindBaseline, KindIdentifier, KindModuleIdentity, KindObjectIdentity:
		return true
	}
	return false
}
