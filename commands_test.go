package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"

	"code.cryptopower.dev/group/govledger/ledger"
	"code.cryptopower.dev/group/govledger/pagestore"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Commands", func() {
	var (
		dir       string
		out       *bytes.Buffer
		oldStdout io.Writer
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "govledger-cli")
		Expect(err).ToNot(HaveOccurred())

		out = new(bytes.Buffer)
		oldStdout = stdout
		stdout = out
	})

	AfterEach(func() {
		stdout = oldStdout
		os.RemoveAll(dir)
	})

	// cli runs one command as principal against the store in dir and returns
	// what it printed.
	cli := func(driver, principal string, args ...string) (string, error) {
		out.Reset()
		base := []string{"--appdata", dir, "--dbdriver", driver, "--debuglevel", "critical"}
		if principal != "" {
			base = append(base, "--principal", principal)
		}
		err := run(append(base, args...))
		return out.String(), err
	}

	getProposal := func(driver string, key string) *ledger.Proposal {
		s, err := cli(driver, "", "get", key)
		Expect(err).ToNot(HaveOccurred())
		var p *ledger.Proposal
		Expect(json.Unmarshal([]byte(s), &p)).To(Succeed())
		return p
	}

	for _, driver := range []string{pagestore.DriverBolt, pagestore.DriverBadger} {
		driver := driver

		Describe("with the "+driver+" driver", func() {
			It("prints null for an unused key and zero for an empty ledger", func() {
				s, err := cli(driver, "", "get", "42")
				Expect(err).ToNot(HaveOccurred())
				Expect(strings.TrimSpace(s)).To(Equal("null"))

				s, err = cli(driver, "", "count")
				Expect(err).ToNot(HaveOccurred())
				Expect(strings.TrimSpace(s)).To(Equal("0"))
			})

			It("runs a proposal through its lifecycle across invocations", func() {
				By("Creating the proposal as alice")
				s, err := cli(driver, "alice", "create", "-m", "Fund the docs", "1")
				Expect(err).ToNot(HaveOccurred())
				Expect(strings.TrimSpace(s)).To(Equal("null"))

				p := getProposal(driver, "1")
				Expect(p.Owner).To(Equal(ledger.Principal("alice")))
				Expect(p.Description).To(Equal("Fund the docs"))
				Expect(p.IsActive).To(BeTrue())

				By("Voting as bob, twice")
				_, err = cli(driver, "bob", "vote", "1", "approve")
				Expect(err).ToNot(HaveOccurred())
				_, err = cli(driver, "bob", "vote", "1", "reject")
				Expect(ledger.Code(err)).To(Equal(ledger.ErrAlreadyVoted))

				By("Ending the proposal as a non-owner, then as the owner")
				_, err = cli(driver, "bob", "end", "1")
				Expect(ledger.Code(err)).To(Equal(ledger.ErrAccessRejected))
				_, err = cli(driver, "alice", "end", "1")
				Expect(err).ToNot(HaveOccurred())

				_, err = cli(driver, "carol", "vote", "1", "pass")
				Expect(ledger.Code(err)).To(Equal(ledger.ErrProposalIsNotActive))

				By("Editing as a non-owner")
				_, err = cli(driver, "carol", "edit", "-m", "Hijacked", "1")
				Expect(ledger.Code(err)).To(Equal(ledger.ErrAccessRejected))

				p = getProposal(driver, "1")
				Expect(p.Description).To(Equal("Fund the docs"))
				Expect(p.IsActive).To(BeFalse())
				Expect(p.Approve).To(Equal(uint32(1)))
				Expect(p.Reject).To(BeZero())
				Expect(p.Voted).To(Equal([]ledger.Principal{"bob"}))

				s, err = cli(driver, "", "count")
				Expect(err).ToNot(HaveOccurred())
				Expect(strings.TrimSpace(s)).To(Equal("1"))
			})

			It("creates inactive proposals and reopens them on edit", func() {
				_, err := cli(driver, "alice", "create", "--inactive", "-m", "Draft", "7")
				Expect(err).ToNot(HaveOccurred())
				Expect(getProposal(driver, "7").IsActive).To(BeFalse())

				_, err = cli(driver, "alice", "edit", "-m", "Final", "7")
				Expect(err).ToNot(HaveOccurred())
				p := getProposal(driver, "7")
				Expect(p.IsActive).To(BeTrue())
				Expect(p.Description).To(Equal("Final"))
			})

			It("prints the replaced proposal when a key is reused", func() {
				_, err := cli(driver, "alice", "create", "-m", "First", "3")
				Expect(err).ToNot(HaveOccurred())

				s, err := cli(driver, "bob", "create", "-m", "Second", "3")
				Expect(err).ToNot(HaveOccurred())
				var prev *ledger.Proposal
				Expect(json.Unmarshal([]byte(s), &prev)).To(Succeed())
				Expect(prev.Description).To(Equal("First"))
				Expect(prev.Owner).To(Equal(ledger.Principal("alice")))

				Expect(getProposal(driver, "3").Owner).To(Equal(ledger.Principal("bob")))
			})

			It("attributes commands without a principal to the anonymous caller", func() {
				_, err := cli(driver, "", "create", "-m", "Open", "9")
				Expect(err).ToNot(HaveOccurred())
				Expect(getProposal(driver, "9").Owner).To(Equal(ledger.AnonymousPrincipal))
			})

			It("rejects unknown choices and missing proposals", func() {
				_, err := cli(driver, "bob", "vote", "1", "maybe")
				Expect(ledger.Code(err)).To(Equal(ledger.ErrInvalidChoice))

				_, err = cli(driver, "bob", "vote", "1", "approve")
				Expect(ledger.Code(err)).To(Equal(ledger.ErrNoSuchProposal))
			})
		})
	}

	It("refuses malformed keys and missing arguments", func() {
		_, err := cli(pagestore.DriverBolt, "", "get", "not-a-key")
		Expect(err).To(HaveOccurred())

		_, err = cli(pagestore.DriverBolt, "alice", "create", "1")
		Expect(err).To(HaveOccurred())

		_, err = cli(pagestore.DriverBolt, "", "vote", "1")
		Expect(err).To(HaveOccurred())
	})
})
