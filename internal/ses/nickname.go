// Package ses reads SCSI Enclosure Services data through the sg_ses
// utility. Only the subenclosure nickname page is needed here; it gives
// enclosure groups their operator-assigned labels.
package ses

import (
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/saslab/sasdevices/internal/cache"
	"github.com/saslab/sasdevices/internal/topology"
)

// nicknameRe matches the value line of the subenclosure nickname
// status page, e.g. "  nickname: rack2-jbod1".
var nicknameRe = regexp.MustCompile(`(?im)^\s*nickname:\s*(\S.*?)\s*$`)

// Namer resolves display names for enclosures: configured overrides
// first, then the SES subenclosure nickname via sg_ses. Lookups are
// cached per sg device for the process lifetime.
type Namer struct {
	// Overrides maps enclosure SAS address to a configured nickname.
	Overrides map[string]string
}

// Nickname returns the name to display for an enclosure, or ok=false
// when neither an override nor an SES nickname exists and the caller
// should fall back to vendor/model/address formatting.
func (n *Namer) Nickname(enc *topology.Enclosure) (string, bool) {
	if n != nil && n.Overrides != nil {
		if nick, ok := n.Overrides[enc.SASAddress]; ok {
			return nick, true
		}
	}
	if enc.SG == "" {
		return "", false
	}
	nick, err := SubenclosureNickname(enc.SG)
	if err != nil {
		return "", false
	}
	return nick, true
}

// SubenclosureNickname queries sg_ses for the nickname of the
// enclosure behind a generic scsi device (sg name without /dev/).
func SubenclosureNickname(sgName string) (string, error) {
	c := cache.Global()
	cacheKey := "ses:nickname:" + sgName

	if cached := c.Get(cacheKey); cached != nil {
		return cached.(string), nil
	}

	if _, err := exec.LookPath("sg_ses"); err != nil {
		return "", ErrSgSesNotInstalled
	}

	out, err := exec.Command("sg_ses", "--page=snic", "/dev/"+sgName).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("sg_ses failed for %s: %w", sgName, err)
	}

	nick, err := parseNickname(string(out))
	if err != nil {
		return "", err
	}

	c.SetSlow(cacheKey, nick)
	return nick, nil
}

// parseNickname extracts the nickname value from sg_ses page output.
func parseNickname(out string) (string, error) {
	m := nicknameRe.FindStringSubmatch(out)
	if m == nil {
		return "", ErrNoNickname
	}
	nick := strings.TrimSpace(m[1])
	if nick == "" {
		return "", ErrNoNickname
	}
	return nick, nil
}
