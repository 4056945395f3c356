package composer

// toast is the one-line flash shown in the status row. It implements
// control.Notifier.
type toast struct {
	text string
	seq  int
	// fresh is set by Notify until the model schedules the expiry.
	fresh bool
}

func (t *toast) Notify(message string) {
	t.text = message
	t.seq++
	t.fresh = true
}

func (t *toast) clear(seq int) {
	if seq == t.seq {
		t.text = ""
	}
}
