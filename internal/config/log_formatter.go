package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	colorRed         = 31
	colorGreen       = 32
	colorYellow      = 33
	colorBlue        = 36
	colorGray        = 37
	colorLightGreen  = 92
	colorLightYellow = 93
	colorCyan        = 96
)

// NbFormatter renders entries as colored key=value pairs, fields sorted by key.
type NbFormatter struct {
	NoColors bool
}

func (f *NbFormatter) Format(entry *log.Entry) ([]byte, error) {
	var b bytes.Buffer

	levelColor := colorBlue
	switch entry.Level {
	case log.DebugLevel, log.TraceLevel:
		levelColor = colorGray
	case log.WarnLevel:
		levelColor = colorYellow
	case log.ErrorLevel, log.FatalLevel, log.PanicLevel:
		levelColor = colorRed
	}

	f.pair(&b, "level", strings.ToUpper(entry.Level.String())[:4], levelColor)
	f.pair(&b, "ts", entry.Time.Format("2006-01-02 15:04:05.000"), colorLightYellow)
	if entry.HasCaller() {
		f.pair(&b, "source", fmt.Sprintf("%s:%d", entry.Caller.File, entry.Caller.Line), colorLightYellow)
	}

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s := fieldString(entry.Data[k])
		if s == "" {
			continue
		}
		valueColor := colorCyan
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			valueColor = colorGreen
		} else if strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
			valueColor = colorLightYellow
		}
		f.pair(&b, k, s, valueColor)
	}
	f.pair(&b, "msg", strconv.Quote(entry.Message), colorLightGreen)

	out := strings.NewReplacer("\r", `\r`, "\n", `\n`).Replace(strings.TrimPrefix(b.String(), " "))
	return []byte(out + "\n"), nil
}

func (f *NbFormatter) pair(b *bytes.Buffer, key, value string, valueColor int) {
	if f.NoColors {
		fmt.Fprintf(b, " %s=%s", key, value)
		return
	}
	fmt.Fprintf(b, " \x1b[%dm%s\x1b[0m=\x1b[%dm%s\x1b[0m", colorCyan, key, valueColor, value)
}

func fieldString(val any) string {
	if err, ok := val.(error); ok {
		return strconv.Quote(err.Error())
	}
	m, err := json.Marshal(val)
	if err != nil {
		return ""
	}
	return string(m)
}
