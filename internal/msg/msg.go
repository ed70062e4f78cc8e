// Package msg holds the user-facing strings of the CLI, per locale.
package msg

import (
	"fmt"
	"strings"
)

// Locale identifies a supported language.
type Locale string

const (
	English       Locale = "en"
	PortugueseBR  Locale = "pt-BR"
	DefaultLocale        = English
)

// Locales lists the supported locales.
var Locales = []Locale{English, PortugueseBR}

// Key identifies one message.
type Key int

const (
	NoDirectory Key = iota
	NoMarkdownFiles
	NoGroups
	GroupsFound
	Deleted
	Rewritten
	Undone
	NothingToUndo
	NoTargets
	EmptyReplacement
	BadReplacement
	CrossGroup
	UnknownGroup
	NotInGroup
	StaleOccurrence
	UndoConflict
	InvalidUTF8
	NoHistory
	Watching
	ActionDelete
	ActionRewrite

	keyCount
)

var catalog = map[Locale]map[Key]string{
	English: {
		NoDirectory:      "No directory selected.",
		NoMarkdownFiles:  "No Markdown files found in %s.",
		NoGroups:         "No repeated references found.",
		GroupsFound:      "%d groups, %d references in %d files (%s policy).",
		Deleted:          "Deleted %d references in %d files.",
		Rewritten:        "Rewrote %d references to [[%s]] in %d files.",
		Undone:           "Action undone: %s (%d files restored).",
		NothingToUndo:    "No action to undo.",
		NoTargets:        "No references selected.",
		EmptyReplacement: "Invalid reference name.",
		BadReplacement:   "A reference name may not contain \"]]\" or line breaks.",
		CrossGroup:       "Rewrite needs all selected references to belong to the same group.",
		UnknownGroup:     "Group not found.",
		NotInGroup:       "The selected reference does not belong to the group.",
		StaleOccurrence:  "A selected reference is no longer on its line; scan again.",
		UndoConflict:     "A file changed after the action; use --force to undo anyway.",
		InvalidUTF8:      "A Markdown file is not valid UTF-8.",
		NoHistory:        "No actions recorded.",
		Watching:         "Watching %s for changes. Press Ctrl+C to stop.",
		ActionDelete:     "Delete",
		ActionRewrite:    "Rewrite",
	},
	PortugueseBR: {
		NoDirectory:      "Nenhuma pasta selecionada.",
		NoMarkdownFiles:  "Nenhum arquivo Markdown encontrado em %s.",
		NoGroups:         "Nenhuma referência repetida encontrada.",
		GroupsFound:      "%d grupos, %d referências em %d arquivos (política %s).",
		Deleted:          "%d referências apagadas em %d arquivos.",
		Rewritten:        "%d referências reescritas para [[%s]] em %d arquivos.",
		Undone:           "Ação desfeita: %s (%d arquivos restaurados).",
		NothingToUndo:    "Nenhuma ação para desfazer.",
		NoTargets:        "Nenhuma referência selecionada.",
		EmptyReplacement: "Nome da referência inválido.",
		BadReplacement:   "O nome da referência não pode conter \"]]\" nem quebras de linha.",
		CrossGroup:       "Para reescrever, todas as referências selecionadas devem pertencer ao mesmo grupo.",
		UnknownGroup:     "Grupo não encontrado.",
		NotInGroup:       "A referência selecionada não pertence ao grupo.",
		StaleOccurrence:  "Uma referência selecionada não está mais na sua linha; analise novamente.",
		UndoConflict:     "Um arquivo mudou depois da ação; use --force para desfazer mesmo assim.",
		InvalidUTF8:      "Um arquivo Markdown não está em UTF-8 válido.",
		NoHistory:        "Nenhuma ação registrada.",
		Watching:         "Observando %s. Pressione Ctrl+C para parar.",
		ActionDelete:     "Apagar",
		ActionRewrite:    "Reescrever",
	},
}

// ParseLocale accepts "en", "pt-BR" and their common spellings.
func ParseLocale(s string) (Locale, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "-")) {
	case "", "en", "english":
		return English, nil
	case "pt", "pt-br", "portuguese":
		return PortugueseBR, nil
	}
	return "", fmt.Errorf("unsupported language: %q (must be en or pt-BR)", s)
}

// Text formats the message for key in locale l, falling back to English.
func (l Locale) Text(key Key, args ...any) string {
	format, ok := catalog[l][key]
	if !ok {
		format, ok = catalog[English][key]
	}
	if !ok {
		return fmt.Sprintf("msg(%d)", int(key))
	}
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
