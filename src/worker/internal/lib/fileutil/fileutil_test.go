package fileutil_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/lib/fileutil"
	"os"
	"path/filepath"
)

var _ = Describe("Fileutil", func() {
	var testDir string

	BeforeEach(func() {
		var err error
		testDir, err = os.MkdirTemp("", "voxsplit-fileutil-")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.RemoveAll(testDir)).To(Succeed())
	})

	Describe("CopyFile", func() {
		It("copies the file contents", func() {
			srcPath := filepath.Join(testDir, "src.mp3")
			destPath := filepath.Join(testDir, "dest.mp3")
			Expect(os.WriteFile(srcPath, []byte("audio bytes"), os.ModePerm)).To(Succeed())

			Expect(fileutil.CopyFile(srcPath, destPath)).To(Succeed())

			contents, err := os.ReadFile(destPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(contents).To(Equal([]byte("audio bytes")))

			By("leaving the source in place")
			Expect(srcPath).To(BeAnExistingFile())
		})

		It("overwrites an existing destination", func() {
			srcPath := filepath.Join(testDir, "src.mp3")
			destPath := filepath.Join(testDir, "dest.mp3")
			Expect(os.WriteFile(srcPath, []byte("new"), os.ModePerm)).To(Succeed())
			Expect(os.WriteFile(destPath, []byte("something much older"), os.ModePerm)).To(Succeed())

			Expect(fileutil.CopyFile(srcPath, destPath)).To(Succeed())

			contents, err := os.ReadFile(destPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(contents).To(Equal([]byte("new")))
		})

		It("fails when the source is missing", func() {
			srcPath := filepath.Join(testDir, "not-there.mp3")
			destPath := filepath.Join(testDir, "dest.mp3")

			err := fileutil.CopyFile(srcPath, destPath)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ReplaceDir", func() {
		var makeSourceDir = func() string {
			srcDir := filepath.Join(testDir, "src")
			Expect(os.MkdirAll(filepath.Join(srcDir, "nested"), os.ModePerm)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(srcDir, "a.mp3"), []byte("a"), os.ModePerm)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(srcDir, "nested", "b.mp3"), []byte("b"), os.ModePerm)).To(Succeed())
			return srcDir
		}

		It("moves the source directory to the destination", func() {
			srcDir := makeSourceDir()
			destDir := filepath.Join(testDir, "dest")

			Expect(fileutil.ReplaceDir(srcDir, destDir)).To(Succeed())

			Expect(srcDir).NotTo(BeADirectory())

			contents, err := os.ReadFile(filepath.Join(destDir, "a.mp3"))
			Expect(err).NotTo(HaveOccurred())
			Expect(contents).To(Equal([]byte("a")))

			contents, err = os.ReadFile(filepath.Join(destDir, "nested", "b.mp3"))
			Expect(err).NotTo(HaveOccurred())
			Expect(contents).To(Equal([]byte("b")))
		})

		It("clears out a previous destination", func() {
			srcDir := makeSourceDir()
			destDir := filepath.Join(testDir, "dest")
			Expect(os.MkdirAll(destDir, os.ModePerm)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(destDir, "stale.mp3"), []byte("stale"), os.ModePerm)).To(Succeed())

			Expect(fileutil.ReplaceDir(srcDir, destDir)).To(Succeed())

			Expect(filepath.Join(destDir, "stale.mp3")).NotTo(BeAnExistingFile())
			Expect(filepath.Join(destDir, "a.mp3")).To(BeAnExistingFile())
		})

		It("creates missing destination parents", func() {
			srcDir := makeSourceDir()
			destDir := filepath.Join(testDir, "deeply", "nested", "dest")

			Expect(fileutil.ReplaceDir(srcDir, destDir)).To(Succeed())
			Expect(filepath.Join(destDir, "a.mp3")).To(BeAnExistingFile())
		})

		It("fails when the source is missing", func() {
			srcDir := filepath.Join(testDir, "not-there")
			destDir := filepath.Join(testDir, "dest")

			err := fileutil.ReplaceDir(srcDir, destDir)
			Expect(err).To(HaveOccurred())
		})
	})
})
