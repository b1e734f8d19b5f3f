package usecase

import (
	"fmt"
	"math/rand/v2"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/itshmoh/exambot/internal/core/domain"
)

// defaultTopicVocabulary covers the major Kubernetes exam subject areas.
// Topics are drawn from this curated list rather than from corpus metadata,
// which is sparsely populated in some dataset variants.
var defaultTopicVocabulary = []string{
	"pods",
	"deployments",
	"replicasets",
	"statefulsets",
	"daemonsets",
	"jobs and cronjobs",
	"services",
	"ingress",
	"networking",
	"network policies",
	"dns",
	"configmaps",
	"secrets",
	"volumes",
	"persistent volumes",
	"storage classes",
	"namespaces",
	"labels and selectors",
	"scheduling",
	"taints and tolerations",
	"node affinity",
	"resource limits",
	"autoscaling",
	"rbac",
	"service accounts",
	"security contexts",
	"etcd",
	"kubelet",
	"control plane",
	"cluster upgrades",
	"troubleshooting",
	"monitoring and logging",
}

// LoadTopicVocabulary reads a YAML topic list, falling back to the built-in
// vocabulary when no path is configured.
func LoadTopicVocabulary(path string) ([]string, error) {
	if path == "" {
		return defaultTopicVocabulary, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topic vocabulary: %w", err)
	}
	var doc struct {
		Topics []string `yaml:"topics"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse topic vocabulary: %w", err)
	}
	if len(doc.Topics) == 0 {
		return nil, fmt.Errorf("topic vocabulary %s contains no topics", path)
	}
	return doc.Topics, nil
}

// randomTopic picks a topic uniformly from the vocabulary. Repeated calls
// deliberately vary: reproducibility is not wanted here.
func (uc *RetrievalUseCase) randomTopic() string {
	if len(uc.topics) == 0 {
		return ""
	}
	return uc.topics[rand.IntN(len(uc.topics))]
}

// pickCandidate selects one candidate uniformly at random among the top
// poolSize entries, so repeated requests for the same topic do not always
// surface the identical question.
func pickCandidate(candidates []domain.ScoredCandidate, poolSize int) (domain.ScoredCandidate, bool) {
	if len(candidates) == 0 {
		return domain.ScoredCandidate{}, false
	}
	pool := candidates
	if poolSize > 0 && len(pool) > poolSize {
		pool = pool[:poolSize]
	}
	return pool[rand.IntN(len(pool))], true
}
