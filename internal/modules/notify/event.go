package notify

// Kind is one of the three transient feedback tiers.
type Kind int

const (
	KindToast Kind = iota
	KindBanner
	KindModal

	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindToast:
		return "toast"
	case KindBanner:
		return "banner"
	case KindModal:
		return "modal"
	}
	return "unknown"
}

// Variant picks the tone a renderer uses for a toast or banner.
type Variant string

const (
	VariantInfo    Variant = "info"
	VariantSuccess Variant = "success"
	VariantWarning Variant = "warning"
	VariantError   Variant = "error"
)

// Payload is the closed set of event bodies: Toast, Banner and Modal.
type Payload interface {
	Kind() Kind
	// hidden reports whether the payload carries nothing to show, which the
	// provider treats as an instruction to clear the slot.
	hidden() bool
}

// Toast is brief feedback that expires on its own.
type Toast struct {
	Message   string
	Icon      string
	Variant   Variant
	OnDismiss func()
}

func (Toast) Kind() Kind     { return KindToast }
func (t Toast) hidden() bool { return t.Message == "" }

// Banner stays inline until dismissed.
type Banner struct {
	Title     string
	Message   string
	Icon      string
	Variant   Variant
	OnDismiss func()
}

func (Banner) Kind() Kind     { return KindBanner }
func (b Banner) hidden() bool { return b.Message == "" }

// Modal blocks until the user confirms or cancels.
type Modal struct {
	Title        string
	Message      string
	Icon         string
	ConfirmLabel string
	CancelLabel  string
	OnConfirm    func()
	OnCancel     func()
}

func (Modal) Kind() Kind     { return KindModal }
func (m Modal) hidden() bool { return m.Title == "" && m.Message == "" }

// Event is a payload stamped with the id used to dismiss it later.
type Event struct {
	ID      string
	Payload Payload
}

func (e Event) Kind() Kind {
	return e.Payload.Kind()
}

// Hidden reports whether the event clears its slot instead of showing.
func (e Event) Hidden() bool {
	return e.Payload.hidden()
}
