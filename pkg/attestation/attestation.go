/*
Copyright 2026 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package attestation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	intoto "github.com/in-toto/in-toto-golang/in_toto"
	"sigs.k8s.io/release-utils/hash"

	"sigs.k8s.io/tollgate/pkg/pipeline"
)

// PredicateType is the in-toto test result predicate
const PredicateType = "https://in-toto.io/attestation/test-result/v0.1"

// Results of the test-result predicate
const (
	ResultPassed = "PASSED"
	ResultWarned = "WARNED"
	ResultFailed = "FAILED"
)

type (
	Attestation struct {
		intoto.StatementHeader
		Predicate Predicate `json:"predicate"`
	}

	// Predicate records which checks passed, warned or failed
	Predicate struct {
		Result        string               `json:"result"`
		Configuration []ResourceDescriptor `json:"configuration"`
		URL           []string             `json:"url,omitempty"`
		PassedTests   []string             `json:"passedTests"`
		WarnedTests   []string             `json:"warnedTests"`
		FailedTests   []string             `json:"failedTests"`
	}

	ResourceDescriptor struct {
		Name   string            `json:"name,omitempty"`
		URI    string            `json:"uri,omitempty"`
		Digest map[string]string `json:"digest,omitempty"`
	}
)

func New() *Attestation {
	return &Attestation{
		StatementHeader: intoto.StatementHeader{
			Type:          intoto.StatementInTotoV01,
			PredicateType: PredicateType,
			Subject:       []intoto.Subject{},
		},
		Predicate: Predicate{
			Configuration: []ResourceDescriptor{},
			PassedTests:   []string{},
			WarnedTests:   []string{},
			FailedTests:   []string{},
		},
	}
}

// FromResult returns an attestation of a pipeline result. Skipped steps
// are not listed.
func FromResult(result *pipeline.Result) *Attestation {
	att := New()
	for _, o := range result.Outcomes {
		switch {
		case o.Status == pipeline.StatusSkipped:
			continue
		case !o.Failed():
			att.Predicate.PassedTests = append(att.Predicate.PassedTests, o.Step.Name)
		case o.Step.IsStrict():
			att.Predicate.FailedTests = append(att.Predicate.FailedTests, o.Step.Name)
		default:
			att.Predicate.WarnedTests = append(att.Predicate.WarnedTests, o.Step.Name)
		}
	}

	switch {
	case !result.Success:
		att.Predicate.Result = ResultFailed
	case len(att.Predicate.WarnedTests) > 0:
		att.Predicate.Result = ResultWarned
	default:
		att.Predicate.Result = ResultPassed
	}
	return att
}

// AddSubject adds the source the checks ran on. A source without a
// commit is recorded without digest.
func (att *Attestation) AddSubject(name, commit string) {
	subject := intoto.Subject{Name: name, Digest: map[string]string{}}
	if commit != "" {
		subject.Digest["sha1"] = commit
	}
	att.Subject = append(att.Subject, subject)
}

// AddConfiguration records the pipeline definition file with its digest
func (att *Attestation) AddConfiguration(path string) error {
	sha, err := hash.SHA256ForFile(path)
	if err != nil {
		return fmt.Errorf("hashing configuration file: %w", err)
	}
	att.Predicate.Configuration = append(att.Predicate.Configuration, ResourceDescriptor{
		Name:   path,
		Digest: map[string]string{"sha256": sha},
	})
	return nil
}

func (att *Attestation) ToJSON() ([]byte, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if err := enc.Encode(att); err != nil {
		return nil, fmt.Errorf("encoding attestation: %w", err)
	}
	return b.Bytes(), nil
}

// WriteJSON writes the attestation to a file
func (att *Attestation) WriteJSON(path string) error {
	data, err := att.ToJSON()
	if err != nil {
		return fmt.Errorf("serializing attestation: %w", err)
	}
	if err := os.WriteFile(path, data, os.FileMode(0o644)); err != nil {
		return fmt.Errorf("writing attestation to %s: %w", path, err)
	}
	return nil
}
