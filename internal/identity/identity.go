// Package identity issues anonymous guest identities for meeting
// participants: a random display name, a generated avatar URL and a user
// id. Nothing is stored server-side; the browser keeps its identity.
package identity

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"math/big"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Avatar sets supported by the robohash generator.
var roboSets = map[string]string{
	"robot":   "set1",
	"monster": "set2",
	"head":    "set3",
	"cat":     "set4",
}

// DefaultAvatarSet is used when no set key is given or the key is unknown.
const DefaultAvatarSet = "robot"

var adjectives = []string{
	"bright", "cosmic", "lucky", "golden", "wild",
	"sunny", "fuzzy", "neon", "silver", "chill",
}

var animals = []string{
	"otter", "fox", "panda", "tiger", "dolphin",
	"koala", "falcon", "lynx", "orca", "lemur",
}

// Identity is one guest identity.
type Identity struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// NewGuest mints a fresh guest identity using the given avatar set key.
func NewGuest(avatarSet string) Identity {
	seed := RandomSeed()
	return Identity{
		UserID: uuid.New().String(),
		Name:   RandomName(seed),
		Avatar: AvatarURL(avatarSet, seed, 96),
	}
}

// RandomSeed returns a short random lowercase token.
func RandomSeed() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return uuid.New().String()[:12]
	}
	s := strings.ToLower(base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf))
	if len(s) > 12 {
		s = s[:12]
	}
	return s
}

// RandomName builds an adjective_animal_SEED display name.
func RandomName(seed string) string {
	if seed == "" {
		seed = RandomSeed()
	}
	tag := strings.ToUpper(seed)
	if len(tag) > 3 {
		tag = tag[:3]
	}
	return fmt.Sprintf("%s_%s_%s", pick(adjectives), pick(animals), tag)
}

// AvatarURL builds a robohash avatar URL for the seed.
func AvatarURL(setKey, seed string, size int) string {
	set, ok := roboSets[setKey]
	if !ok {
		set = roboSets[DefaultAvatarSet]
	}
	if size <= 0 {
		size = 96
	}
	return fmt.Sprintf("https://robohash.org/%s.png?set=%s&size=%dx%d",
		url.QueryEscape(seed), set, size, size)
}

func pick(list []string) string {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(list))))
	if err != nil {
		return list[0]
	}
	return list[n.Int64()]
}
