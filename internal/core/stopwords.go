package core

// Stopwords is a set of normalized words that carry no meaning on their own
// as a reference, such as articles and pronouns.
type Stopwords map[string]struct{}

// builtinStopwords covers common Portuguese and English articles, pronouns,
// prepositions, conjunctions, adjectives, verbs and number words.
var builtinStopwords = []string{
	// Portuguese articles and contractions
	"a", "à", "as", "ao", "aos", "um", "uma", "uns", "umas",
	"o", "os", "da", "das", "do", "dos", "de", "em", "para",
	"por", "com", "sem", "sobre", "entre", "até", "desde",
	"pela", "pelas", "pelo", "pelos",
	// English articles
	"an", "the",
	// Portuguese pronouns
	"eu", "tu", "ele", "ela", "nós", "vós", "eles", "elas",
	"me", "te", "se", "nos", "vos", "lhe", "lhes",
	"este", "esta", "estes", "estas", "esse", "essa", "esses", "essas",
	"aquele", "aquela", "aqueles", "aquelas",
	// English pronouns
	"i", "you", "he", "she", "it", "we", "they",
	"him", "her", "us", "them",
	"this", "that", "these", "those",
	// Portuguese prepositions and conjunctions
	"que", "como", "mais", "menos", "também", "sempre",
	"quando", "onde", "porque",
	// English prepositions and conjunctions
	"and", "or", "but", "because", "until", "while",
	"of", "at", "by", "for", "with", "about", "against",
	"between", "into", "through", "during", "before", "after",
	// Portuguese adjectives
	"grande", "pequeno", "bom", "ruim", "novo", "velho",
	"primeiro", "último", "melhor", "pior",
	// English adjectives
	"big", "small", "good", "bad", "new", "old",
	"first", "last", "better", "worse",
	// Portuguese verbs
	"ser", "estar", "ter", "fazer", "poder", "dizer",
	"ir", "ver", "dar", "saber", "querer", "chegar",
	"passar", "dever", "ficar", "contar", "começar",
	// English verbs
	"be", "have", "do", "say", "go", "see", "get",
	"make", "know", "think", "take", "come", "want",
	"look", "use", "find", "give", "tell", "work",
	// Portuguese numbers
	"dois", "três", "quatro", "cinco", "seis", "sete",
	"oito", "nove", "dez", "segundo", "terceiro",
	"quarto", "quinto",
	// English numbers
	"one", "two", "three", "four", "five", "six", "seven",
	"eight", "nine", "ten", "second", "third",
	"fourth", "fifth",
	// "x" as in "versus"
	"x",
}

// NewStopwords returns a set holding the normalized form of words.
func NewStopwords(words ...string) Stopwords {
	s := make(Stopwords, len(words))
	s.Add(words...)
	return s
}

// DefaultStopwords returns a fresh copy of the builtin set.
func DefaultStopwords() Stopwords {
	return NewStopwords(builtinStopwords...)
}

// Add inserts the normalized form of words. Empty words are ignored.
func (s Stopwords) Add(words ...string) {
	for _, w := range words {
		if n := Normalize(w); n != "" {
			s[n] = struct{}{}
		}
	}
}

// Contains reports whether normalized is a stopword. A nil set contains nothing.
func (s Stopwords) Contains(normalized string) bool {
	_, ok := s[normalized]
	return ok
}
