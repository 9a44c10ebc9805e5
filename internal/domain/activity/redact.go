package activity

import (
	"sort"
	"strings"
)

// Directory indexa perfiles por id y por email para resolver nombres
// en las descripciones del feed.
type Directory struct {
	byID    map[string]Profile
	byEmail []Profile // ordenado por largo de email desc
}

func BuildDirectory(profiles []Profile) *Directory {
	d := &Directory{byID: make(map[string]Profile, len(profiles))}
	for _, p := range profiles {
		d.byID[p.ID] = p
		if p.Email != "" {
			d.byEmail = append(d.byEmail, p)
		}
	}
	// Emails más largos primero: evita que "ana@x.com" pise "mariana@x.com".
	sort.SliceStable(d.byEmail, func(i, j int) bool {
		return len(d.byEmail[i].Email) > len(d.byEmail[j].Email)
	})
	return d
}

func (d *Directory) Lookup(id string) (Profile, bool) {
	p, ok := d.byID[id]
	return p, ok
}

// ArchivedID reporta si el id pertenece a una cuenta archivada conocida.
// El feed descarta todo item cuyo actor o target esté archivado.
func (d *Directory) ArchivedID(id string) bool {
	p, ok := d.byID[id]
	return ok && p.Archived
}

// DisplayName resuelve el nombre visible de un id; cuentas archivadas
// se redactan como "Archived user" y los ids desconocidos como "Unknown".
func (d *Directory) DisplayName(id string) string {
	p, ok := d.byID[id]
	if !ok {
		return "Unknown"
	}
	if p.Archived {
		return "Archived user"
	}
	if p.Name != "" {
		return p.Name
	}
	if p.Email != "" {
		return p.Email
	}
	return "Unknown"
}

// Humanize reemplaza emails embebidos en una descripción por el nombre
// visible del dueño. Solo sustituye ocurrencias completas: el carácter
// vecino no puede ser parte de otro token de email.
func (d *Directory) Humanize(desc string) string {
	if desc == "" {
		return desc
	}
	for _, p := range d.byEmail {
		name := d.DisplayName(p.ID)
		if name == p.Email {
			continue
		}
		desc = replaceWholeEmail(desc, p.Email, name)
	}
	return desc
}

func replaceWholeEmail(s, email, name string) string {
	var b strings.Builder
	for {
		i := strings.Index(s, email)
		if i < 0 {
			break
		}
		end := i + len(email)
		if isEmailTokenBoundary(s, i, end) {
			b.WriteString(s[:i])
			b.WriteString(name)
		} else {
			b.WriteString(s[:end])
		}
		s = s[end:]
	}
	b.WriteString(s)
	return b.String()
}

func isEmailTokenBoundary(s string, start, end int) bool {
	if start > 0 && isEmailTokenChar(s[start-1]) {
		return false
	}
	if end < len(s) && isEmailTokenChar(s[end]) {
		return false
	}
	return true
}

func isEmailTokenChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '.', c == '_', c == '-', c == '+', c == '@':
		return true
	default:
		return false
	}
}
