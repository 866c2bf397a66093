package extractor

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"github.com/minio/highwayhash"

	"github.com/gleaner-cli/gleaner/internal/lang"
)

// semanticKey seeds the similarity fingerprint. Changing it invalidates
// stored semantic hashes, so it is fixed.
var semanticKey = []byte("gleaner.semantic.hash.v1........")

// ExactHash hashes the fragment body normalized only by trimming trailing
// whitespace per line. Identical normalized bodies are exact duplicates.
func ExactHash(code string) string {
	sum := sha256.Sum256([]byte(normalizeBody(code)))
	return hex.EncodeToString(sum[:])
}

// SemanticHash reduces the body to a canonical token skeleton (identifiers
// and literals erased, comments and whitespace dropped) and fingerprints it.
// It is a similarity heuristic: distinct code may collide, which is why the
// deduplicator always scopes hash keys by language.
func SemanticHash(code string, language lang.Language) string {
	sk := skeleton(code, language)
	sum := highwayhash.Sum64([]byte(string(language)+"\x00"+sk), semanticKey)
	return fmt.Sprintf("%016x", sum)
}

// skeleton performs a single-pass lexical normalization: comments removed,
// string/char/numeric literals replaced by §L, identifiers that are not
// keywords of the language replaced by §I, whitespace runs collapsed.
func skeleton(code string, language lang.Language) string {
	keywords := keywordSet(language)
	hashComments := language == lang.Python || language == lang.Ruby || language == lang.PHP
	var b strings.Builder
	runes := []rune(code)
	n := len(runes)
	space := false

	emit := func(tok string) {
		if b.Len() > 0 && space {
			b.WriteByte(' ')
		}
		b.WriteString(tok)
		space = false
	}

	for i := 0; i < n; {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			space = true
			i++
		case r == '/' && i+1 < n && runes[i+1] == '/':
			for i < n && runes[i] != '\n' {
				i++
			}
		case r == '/' && i+1 < n && runes[i+1] == '*':
			i += 2
			for i+1 < n && !(runes[i] == '*' && runes[i+1] == '/') {
				i++
			}
			i += 2
		case r == '#' && hashComments:
			for i < n && runes[i] != '\n' {
				i++
			}
		case r == '"' || r == '\'' || r == '`':
			quote := r
			i++
			for i < n && runes[i] != quote {
				if runes[i] == '\\' && i+1 < n {
					i++
				}
				i++
			}
			i++
			emit("§L")
		case unicode.IsDigit(r):
			for i < n && (unicode.IsDigit(runes[i]) || runes[i] == '.' || runes[i] == '_' ||
				runes[i] == 'x' || runes[i] == 'X' || ('a' <= runes[i] && runes[i] <= 'f') ||
				('A' <= runes[i] && runes[i] <= 'F')) {
				i++
			}
			emit("§L")
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < n && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			word := string(runes[start:i])
			if _, ok := keywords[word]; ok {
				emit(word)
			} else {
				emit("§I")
			}
		default:
			emit(string(r))
			i++
		}
	}
	return b.String()
}

// Dedupe reduces the collection to one representative per duplicate group.
// Stage 1 collapses exact-content groups, stage 2 collapses semantic groups
// among the stage-1 survivors. Both stages are single passes over hash maps,
// keep the first occurrence, and record absorbed uids on the survivor.
// Hash keys are scoped by language, so fragments in different languages are
// never duplicates of each other.
func Dedupe(fragments []Fragment) []Fragment {
	exact := make([]Fragment, 0, len(fragments))
	seenExact := make(map[string]int, len(fragments))
	for _, f := range fragments {
		key := string(f.Language) + "\x00" + f.ExactHash
		if idx, ok := seenExact[key]; ok {
			exact[idx].Absorbed = append(exact[idx].Absorbed, f.UID)
			continue
		}
		seenExact[key] = len(exact)
		exact = append(exact, f)
	}

	out := make([]Fragment, 0, len(exact))
	seenSem := make(map[string]int, len(exact))
	for _, f := range exact {
		key := string(f.Language) + "\x00" + f.SemanticHash
		if idx, ok := seenSem[key]; ok {
			// Carry what the dropped survivor had absorbed in stage 1, so
			// every duplicate uid ends up on the final survivor.
			out[idx].Absorbed = append(out[idx].Absorbed, f.UID)
			out[idx].Absorbed = append(out[idx].Absorbed, f.Absorbed...)
			continue
		}
		seenSem[key] = len(out)
		out = append(out, f)
	}
	return out
}
