package bmeta

import "github.com/sirupsen/logrus"

const defaultBuildMeta = "N/A" // Значение по умолчанию

// Meta версия, дата и коммит сборки. Заполняется через -ldflags.
type Meta struct {
	Version string
	Date    string
	Commit  string
}

// Fields возвращает поля для лога, пустые значения заменяются на N/A.
func (m Meta) Fields() logrus.Fields {
	return logrus.Fields{
		"build_version": orDefault(m.Version),
		"build_date":    orDefault(m.Date),
		"build_commit":  orDefault(m.Commit),
	}
}

func orDefault(v string) string {
	if v == "" {
		return defaultBuildMeta
	}
	return v
}
