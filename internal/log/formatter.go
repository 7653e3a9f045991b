package log

import (
	"fmt"
	"reflect"
	"runtime"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

type formatter struct {
	pattern string
	time    string
}

// Format renders entry through the pattern. Supported verbs: %time, %level,
// %field, %msg, %caller, %func, %goroutine and %n (newline).
func (f *formatter) Format(entry *logrus.Entry) ([]byte, error) {
	output := f.pattern
	output = strings.Replace(output, "%time", entry.Time.Format(f.time), 1)
	output = strings.Replace(output, "%level", entry.Level.String(), 1)
	output = strings.Replace(output, "%field", buildFields(entry), 1)
	output = strings.Replace(output, "%msg", entry.Message, 1)
	if strings.Contains(output, "%caller") {
		output = strings.Replace(output, "%caller", getCaller(), 1)
	}
	if strings.Contains(output, "%func") {
		output = strings.Replace(output, "%func", getFunc(), 1)
	}
	output = strings.Replace(output, "%goroutine", getGoroutineID(), 1)
	output = strings.ReplaceAll(output, "%n", "\n")
	return []byte(output), nil
}

// logPackage is this package's import path; adapter frames are skipped when
// looking for the caller.
var logPackage = reflect.TypeOf(formatter{}).PkgPath()

// callerFrame returns the first stack frame outside logrus and this package's
// adapter methods.
func callerFrame() (runtime.Frame, bool) {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		if !strings.Contains(f.Function, "sirupsen/logrus") &&
			!strings.HasPrefix(f.Function, logPackage+".(*") {
			return f, true
		}
		if !more {
			return runtime.Frame{}, false
		}
	}
}

// getCaller returns package/file.go:line of the logging call.
func getCaller() string {
	f, ok := callerFrame()
	if !ok {
		return "unknown"
	}
	file := f.File
	if idx := strings.LastIndex(file, "/"); idx != -1 && idx+1 < len(file) {
		file = file[idx+1:]
	}
	pkg := ""
	if fn := f.Function; fn != "" {
		if idx := strings.LastIndex(fn, "/"); idx != -1 {
			fn = fn[idx+1:]
		}
		pkg = strings.SplitN(fn, ".", 2)[0]
	}
	return fmt.Sprintf("%s/%s:%d", pkg, file, f.Line)
}

// getFunc returns the bare function or method name of the logging call.
func getFunc() string {
	f, ok := callerFrame()
	if !ok {
		return "unknown"
	}
	funcName := f.Function
	if idx := strings.LastIndex(funcName, "."); idx != -1 && idx+1 < len(funcName) {
		return funcName[idx+1:]
	}
	return funcName
}

func getGoroutineID() string {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	stack := strings.TrimPrefix(string(buf[:n]), "goroutine ")
	idField := strings.Fields(stack)
	if len(idField) > 0 {
		return idField[0]
	}
	return "unknown"
}

// buildFields renders entry fields as key=value pairs in key order.
func buildFields(entry *logrus.Entry) string {
	keys := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fields := make([]string, 0, len(keys))
	for _, key := range keys {
		val := entry.Data[key]
		stringVal, ok := val.(string)
		if !ok {
			stringVal = fmt.Sprint(val)
		}
		fields = append(fields, key+"="+stringVal)
	}
	return strings.Join(fields, ",")
}
