package syncnet

// Hooks carries the callbacks through which every operation reports back
// to the host application. All fields are optional; results never cross
// back as synchronously awaited return values.
type Hooks struct {
	OnProgress func(percent float64)
	OnComplete func(success bool, message string)
	OnError    func(message string)
}

func (h Hooks) progress(percent float64) {
	if h.OnProgress != nil {
		h.OnProgress(percent)
	}
}

func (h Hooks) complete(success bool, message string) {
	if h.OnComplete != nil {
		h.OnComplete(success, message)
	}
}

func (h Hooks) error(message string) {
	if h.OnError != nil {
		h.OnError(message)
	}
}
