// Package kfmt provides a minimal, allocation-free formatted output
// implementation that is safe to use from any point of the boot sequence,
// including code that runs before the Go allocator is available.
package kfmt

import "io"

const numBufSize = 24

var (
	errMissingArg   = []byte("(MISSING)")
	errWrongArgType = []byte("%!(WRONGTYPE)")
	errNoVerb       = []byte("%!(NOVERB)")
	errExtraArg     = []byte("%!(EXTRA)")
	trueValue       = []byte("true")
	falseValue      = []byte("false")

	numBuf [numBufSize]byte

	// singleByte is a shared buffer for emitting individual characters
	// without allocating.
	singleByte = []byte{0}

	// earlyPrintBuffer captures Printf output generated before an output
	// sink has been attached.
	earlyPrintBuffer ringBuffer

	// outputSink is where Printf sends its output. While nil, output is
	// redirected to earlyPrintBuffer.
	outputSink io.Writer
)

// SetOutputSink sets the target for calls to Printf to w and drains any
// data accumulated in the early print buffer into it.
func SetOutputSink(w io.Writer) {
	outputSink = w
	if w != nil {
		io.Copy(w, &earlyPrintBuffer)
	}
}

// GetOutputSink returns the active output sink. If no sink has been
// attached yet, the early print buffer is returned instead.
func GetOutputSink() io.Writer {
	if outputSink != nil {
		return outputSink
	}
	return &earlyPrintBuffer
}

// Printf writes a formatted string to the active output sink. The
// supported verb subset is: %s (string or []byte), %d (base-10 integer),
// %x (base-16 integer), %o (base-8 integer) and %t (bool). An optional
// decimal width before the verb left-pads the value: base-10 values pad
// with spaces, base-16 and base-8 values pad with zeroes.
func Printf(format string, args ...interface{}) {
	Fprintf(outputSink, format, args...)
}

// Fprintf behaves like Printf but writes the formatted output to w.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	var (
		argIndex int
		fmtLen   = len(format)
	)

	for i := 0; i < fmtLen; i++ {
		ch := format[i]
		if ch != '%' {
			emitByte(w, ch)
			continue
		}

		// Scan the optional pad width.
		var padLen int
		for i++; i < fmtLen && format[i] >= '0' && format[i] <= '9'; i++ {
			padLen = padLen*10 + int(format[i]-'0')
		}

		if i >= fmtLen {
			emit(w, errNoVerb)
			break
		}

		verb := format[i]
		if verb == '%' {
			emitByte(w, '%')
			continue
		}

		if argIndex >= len(args) {
			emit(w, errMissingArg)
			continue
		}
		arg := args[argIndex]
		argIndex++

		switch verb {
		case 'o':
			fmtInt(w, arg, 8, padLen)
		case 'd':
			fmtInt(w, arg, 10, padLen)
		case 'x':
			fmtInt(w, arg, 16, padLen)
		case 's':
			fmtString(w, arg, padLen)
		case 't':
			fmtBool(w, arg)
		default:
			emit(w, errNoVerb)
		}
	}

	for ; argIndex < len(args); argIndex++ {
		emit(w, errExtraArg)
	}
}

func fmtBool(w io.Writer, v interface{}) {
	bVal, ok := v.(bool)
	if !ok {
		emit(w, errWrongArgType)
		return
	}

	if bVal {
		emit(w, trueValue)
	} else {
		emit(w, falseValue)
	}
}

func fmtString(w io.Writer, v interface{}, padLen int) {
	switch sVal := v.(type) {
	case string:
		emitPad(w, ' ', padLen-len(sVal))
		// converting the string to a byte slice would allocate; emit one
		// byte at a time instead.
		for i := 0; i < len(sVal); i++ {
			emitByte(w, sVal[i])
		}
	case []byte:
		emitPad(w, ' ', padLen-len(sVal))
		emit(w, sVal)
	default:
		emit(w, errWrongArgType)
	}
}

// fmtInt formats v in the requested base applying padLen left-padding.
// All built-in signed and unsigned integer types are supported.
func fmtInt(w io.Writer, v interface{}, base, padLen int) {
	var (
		uval     uint64
		negative bool
	)

	switch iVal := v.(type) {
	case uint8:
		uval = uint64(iVal)
	case uint16:
		uval = uint64(iVal)
	case uint32:
		uval = uint64(iVal)
	case uint64:
		uval = iVal
	case uint:
		uval = uint64(iVal)
	case uintptr:
		uval = uint64(iVal)
	case int8:
		negative = iVal < 0
		uval = abs64(int64(iVal))
	case int16:
		negative = iVal < 0
		uval = abs64(int64(iVal))
	case int32:
		negative = iVal < 0
		uval = abs64(int64(iVal))
	case int64:
		negative = iVal < 0
		uval = abs64(iVal)
	case int:
		negative = iVal < 0
		uval = abs64(int64(iVal))
	default:
		emit(w, errWrongArgType)
		return
	}

	padCh := byte(' ')
	if base != 10 {
		padCh = '0'
	}

	// Render digits into numBuf back to front.
	index := numBufSize
	for {
		index--
		digit := byte(uval % uint64(base))
		if digit < 10 {
			numBuf[index] = digit + '0'
		} else {
			numBuf[index] = digit - 10 + 'a'
		}

		uval /= uint64(base)
		if uval == 0 {
			break
		}
	}

	width := numBufSize - index
	if negative {
		width++
	}

	if negative && padCh == '0' {
		// sign precedes zero padding
		emitByte(w, '-')
		emitPad(w, padCh, padLen-width)
		emit(w, numBuf[index:])
		return
	}

	emitPad(w, padCh, padLen-width)
	if negative {
		emitByte(w, '-')
	}
	emit(w, numBuf[index:])
}

func abs64(v int64) uint64 {
	if v < 0 {
		return uint64(-v)
	}
	return uint64(v)
}

func emitByte(w io.Writer, ch byte) {
	singleByte[0] = ch
	emit(w, singleByte)
}

func emitPad(w io.Writer, ch byte, count int) {
	for i := 0; i < count; i++ {
		emitByte(w, ch)
	}
}

func emit(w io.Writer, p []byte) {
	if w == nil {
		w = &earlyPrintBuffer
	}
	w.Write(p)
}
