package pagestore

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"decred.org/dcrwallet/v2/errors"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Store version", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = ioutil.TempDir("", "pagestore-version")
		Expect(err).To(BeNil())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	It("stamps a new store with the current version", func() {
		m, err := Open(DriverBolt, dir)
		Expect(err).To(BeNil())
		raw, err := m.db.readMeta(keyStoreVersion)
		Expect(err).To(BeNil())
		Expect(decodeUint32(raw)).To(Equal(StoreVersion))
		Expect(m.Close()).To(Succeed())
	})

	It("refuses a store written with another layout without resetting it", func() {
		db, err := openBoltDB(filepath.Join(dir, "pages.db"))
		Expect(err).To(BeNil())
		Expect(db.writeMeta(keyStoreVersion, encodeUint32(StoreVersion+1))).To(Succeed())
		Expect(db.initMemory(0)).To(Succeed())
		Expect(db.put(0, []byte("k"), []byte("v"))).To(Succeed())
		Expect(db.close()).To(Succeed())

		_, err = Open(DriverBolt, dir)
		Expect(errors.Is(err, errors.Invalid)).To(BeTrue())

		db, err = openBoltDB(filepath.Join(dir, "pages.db"))
		Expect(err).To(BeNil())
		defer db.close()
		v, err := db.get(0, []byte("k"))
		Expect(err).To(BeNil())
		Expect(v).To(Equal([]byte("v")))
	})
})
