// Package commands classifies finalized utterances into editing actions.
//
// Trigger phrases are matched as case-insensitive substrings of the utterance
// and the first rule in table order wins. Because phrases can overlap (one
// phrase containing another), table order is part of the contract: built-in
// rules come first in the order listed in DefaultRules, followed by any extra
// rules in the order they were supplied.
package commands

import "laudo/internal/domain"

// Rule maps a spoken trigger phrase to an action.
type Rule struct {
	Phrase      string
	Action      domain.Action
	Description string
}

// ChestTemplate is the standard chest X-ray text inserted by voice command.
const ChestTemplate = "Os campos pulmonares apresentam transparência preservada, sem evidências de opacidades focais. " +
	"Não há sinais de consolidação ou derrame pleural. " +
	"A silhueta cardíaca possui dimensões normais. " +
	"O mediastino não apresenta alterações."

// DefaultRules is the built-in command table in match order.
var DefaultRules = []Rule{
	{
		Phrase:      "novo parágrafo",
		Action:      domain.Literal("\n\n"),
		Description: "Insere uma quebra de parágrafo",
	},
	{
		Phrase:      "nova linha",
		Action:      domain.Literal("\n"),
		Description: "Insere uma quebra de linha",
	},
	{
		Phrase:      "apagar última frase",
		Action:      domain.Action{Kind: domain.ActionDeleteLastSentence},
		Description: "Remove a última frase",
	},
	{
		Phrase:      "limpar tudo",
		Action:      domain.Action{Kind: domain.ActionClearAll},
		Description: "Apaga todo o texto",
	},
	{
		Phrase:      "salvar laudo",
		Action:      domain.Action{Kind: domain.ActionSaveReport},
		Description: "Salva o laudo atual",
	},
	{
		Phrase:      "inserir template tórax",
		Action:      domain.Literal(ChestTemplate),
		Description: "Insere texto padrão para laudo de tórax",
	},
}
