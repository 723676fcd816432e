package pagestore_test

import (
	"encoding/binary"
	"io/ioutil"
	"os"

	"code.cryptopower.dev/group/govledger/pagestore"
	"decred.org/dcrwallet/v2/errors"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func key(n uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, n)
	return k
}

var _ = Describe("Pagestore", func() {
	It("rejects unknown drivers", func() {
		dir, err := ioutil.TempDir("", "pagestore")
		Expect(err).To(BeNil())
		defer os.RemoveAll(dir)

		_, err = pagestore.Open("leveldb", dir)
		Expect(errors.Is(err, errors.Invalid)).To(BeTrue())
	})

	for _, driver := range []string{pagestore.DriverBolt, pagestore.DriverBadger} {
		driver := driver

		Describe("the "+driver+" driver", func() {
			var (
				dir     string
				manager *pagestore.Manager
			)

			BeforeEach(func() {
				var err error
				dir, err = ioutil.TempDir("", "pagestore")
				Expect(err).To(BeNil())

				manager, err = pagestore.Open(driver, dir)
				Expect(err).To(BeNil())
				Expect(manager.Driver()).To(Equal(driver))
			})

			AfterEach(func() {
				if manager != nil {
					manager.Close()
				}
				os.RemoveAll(dir)
			})

			reopen := func() {
				Expect(manager.Close()).To(Succeed())
				var err error
				manager, err = pagestore.Open(driver, dir)
				Expect(err).To(BeNil())
			}

			It("returns the same handle for the same memory id", func() {
				a, err := manager.Memory(3)
				Expect(err).To(BeNil())
				b, err := manager.Memory(3)
				Expect(err).To(BeNil())
				Expect(a).To(BeIdenticalTo(b))
				Expect(a.ID()).To(Equal(pagestore.MemoryID(3)))
			})

			It("reports absent keys as nil values", func() {
				mem, err := manager.Memory(0)
				Expect(err).To(BeNil())

				v, err := mem.Get(key(42))
				Expect(err).To(BeNil())
				Expect(v).To(BeNil())

				n, err := mem.Len()
				Expect(err).To(BeNil())
				Expect(n).To(BeZero())
			})

			It("keeps memories isolated from each other", func() {
				m0, err := manager.Memory(0)
				Expect(err).To(BeNil())
				m1, err := manager.Memory(1)
				Expect(err).To(BeNil())

				Expect(m0.Put(key(1), []byte("zero"))).To(Succeed())
				Expect(m1.Put(key(1), []byte("one"))).To(Succeed())
				Expect(m1.Put(key(2), []byte("two"))).To(Succeed())

				v, err := m0.Get(key(1))
				Expect(err).To(BeNil())
				Expect(v).To(Equal([]byte("zero")))

				n0, err := m0.Len()
				Expect(err).To(BeNil())
				Expect(n0).To(Equal(uint64(1)))

				n1, err := m1.Len()
				Expect(err).To(BeNil())
				Expect(n1).To(Equal(uint64(2)))
			})

			It("persists memories across reopening", func() {
				mem, err := manager.Memory(5)
				Expect(err).To(BeNil())
				Expect(mem.Put(key(9), []byte("durable"))).To(Succeed())

				By("Closing and reopening the store")
				reopen()

				mem, err = manager.Memory(5)
				Expect(err).To(BeNil())
				v, err := mem.Get(key(9))
				Expect(err).To(BeNil())
				Expect(v).To(Equal([]byte("durable")))

				By("Reopening a second time without writing")
				reopen()

				mem, err = manager.Memory(5)
				Expect(err).To(BeNil())
				n, err := mem.Len()
				Expect(err).To(BeNil())
				Expect(n).To(Equal(uint64(1)))
			})

			It("rejects empty keys", func() {
				mem, err := manager.Memory(0)
				Expect(err).To(BeNil())
				Expect(errors.Is(mem.Put(nil, []byte{1}), errors.Invalid)).To(BeTrue())
			})

			It("refuses use after close", func() {
				mem, err := manager.Memory(0)
				Expect(err).To(BeNil())
				Expect(manager.Close()).To(Succeed())

				_, err = mem.Get(key(1))
				Expect(errors.Is(err, errors.Invalid)).To(BeTrue())

				_, err = manager.Memory(1)
				Expect(errors.Is(err, errors.Invalid)).To(BeTrue())

				Expect(manager.Close()).ToNot(Succeed())
				manager = nil
			})
		})
	}
})
