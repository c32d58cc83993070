package jobstorage_test

import (
	"context"
	"github.com/cockroachdb/errors/markers"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	jobentity "github.com/voxsplit/voxsplit-be/src/shared/job/entity"
	jobstorage "github.com/voxsplit/voxsplit-be/src/shared/job/storage"
	testing2 "github.com/voxsplit/voxsplit-be/src/shared/testing"
	"path"
)

// Every backend gets the same treatment: they implement the same store
// contract and tests shouldn't care which one is underneath. The dynamo
// maker talks to the local DynamoDB instance.
var _ = Describe("Job stores", func() {
	storeMakers := map[string]func() jobentity.Store{
		"memory": func() jobentity.Store {
			return jobstorage.NewMemoryDB()
		},
		"sqlite": func() jobentity.Store {
			dbPath := path.Join(testDir, uuid.New().String()+".db")
			db, err := jobstorage.NewSQLiteDB(dbPath)
			Expect(err).NotTo(HaveOccurred())
			return db
		},
		"dynamo": func() jobentity.Store {
			testing2.ResetDB(db)
			return jobstorage.NewDynamoDB(db)
		},
	}

	for storeName, makeStore := range storeMakers {
		storeName := storeName
		makeStore := makeStore

		Describe(storeName, func() {
			var (
				store jobentity.Store
				job   jobentity.Job
			)

			BeforeEach(func() {
				store = makeStore()
				job = jobentity.NewJob("mixtape.mp3")
				job.UploadPath = "/uploads/" + job.ID + "/mixtape.mp3"
			})

			Describe("CreateJob", func() {
				It("round trips a new job", func() {
					Expect(store.CreateJob(context.Background(), job)).To(Succeed())

					fetched, err := store.GetJob(context.Background(), job.ID)
					Expect(err).NotTo(HaveOccurred())

					Expect(fetched.ID).To(Equal(job.ID))
					Expect(fetched.OriginalFilename).To(Equal(job.OriginalFilename))
					Expect(fetched.UploadPath).To(Equal(job.UploadPath))
					Expect(fetched.Status).To(Equal(jobentity.StatusProcessing))
					Expect(fetched.StemPaths).To(BeEmpty())
					Expect(fetched.CreatedAt).To(BeTemporally("==", job.CreatedAt))
					Expect(fetched.UpdatedAt).To(BeTemporally("==", job.UpdatedAt))
				})

				It("rejects a duplicate job ID", func() {
					Expect(store.CreateJob(context.Background(), job)).To(Succeed())

					err := store.CreateJob(context.Background(), job)
					Expect(err).To(HaveOccurred())
					Expect(markers.Is(err, jobstorage.JobAlreadyExists)).To(BeTrue())
				})

				It("rejects a job without an ID", func() {
					job.ID = ""
					err := store.CreateJob(context.Background(), job)
					Expect(err).To(HaveOccurred())
				})

				It("isolates the stored job from caller mutation", func() {
					job.StemPaths = map[string]string{
						jobentity.VocalsStem: "output/" + job.ID + "/vocals.mp3",
					}
					Expect(store.CreateJob(context.Background(), job)).To(Succeed())

					job.StemPaths[jobentity.VocalsStem] = "elsewhere"

					fetched, err := store.GetJob(context.Background(), job.ID)
					Expect(err).NotTo(HaveOccurred())
					Expect(fetched.StemPaths[jobentity.VocalsStem]).
						To(Equal("output/" + job.ID + "/vocals.mp3"))
				})
			})

			Describe("GetJob", func() {
				It("misses on an unknown job ID", func() {
					_, err := store.GetJob(context.Background(), uuid.New().String())
					Expect(err).To(HaveOccurred())
					Expect(markers.Is(err, jobstorage.JobNotFound)).To(BeTrue())
				})
			})

			Describe("UpdateJob", func() {
				BeforeEach(func() {
					Expect(store.CreateJob(context.Background(), job)).To(Succeed())
				})

				It("completes a job", func() {
					stemPaths := map[string]string{
						jobentity.VocalsStem:        "output/" + job.ID + "/vocals.mp3",
						jobentity.AccompanimentStem: "output/" + job.ID + "/accompaniment.mp3",
					}

					err := store.UpdateJob(context.Background(), job.ID, jobentity.CompleteUpdater(stemPaths))
					Expect(err).NotTo(HaveOccurred())

					fetched, err := store.GetJob(context.Background(), job.ID)
					Expect(err).NotTo(HaveOccurred())
					Expect(fetched.Status).To(Equal(jobentity.StatusCompleted))
					Expect(fetched.StemPaths).To(Equal(stemPaths))
				})

				It("fails a job", func() {
					err := store.UpdateJob(context.Background(), job.ID,
						jobentity.FailUpdater("the engine crashed", "debug details"))
					Expect(err).NotTo(HaveOccurred())

					fetched, err := store.GetJob(context.Background(), job.ID)
					Expect(err).NotTo(HaveOccurred())
					Expect(fetched.Status).To(Equal(jobentity.StatusError))
					Expect(fetched.ErrorMessage).To(Equal("the engine crashed"))
					Expect(fetched.ErrorDebugLog).To(Equal("debug details"))
				})

				It("misses on an unknown job ID", func() {
					err := store.UpdateJob(context.Background(), uuid.New().String(),
						jobentity.CompleteUpdater(nil))
					Expect(err).To(HaveOccurred())
					Expect(markers.Is(err, jobstorage.JobNotFound)).To(BeTrue())
				})

				It("surfaces updater errors without changing the job", func() {
					stemPaths := map[string]string{
						jobentity.VocalsStem:        "output/" + job.ID + "/vocals.mp3",
						jobentity.AccompanimentStem: "output/" + job.ID + "/accompaniment.mp3",
					}

					err := store.UpdateJob(context.Background(), job.ID, jobentity.CompleteUpdater(stemPaths))
					Expect(err).NotTo(HaveOccurred())

					By("trying to fail the already completed job")
					err = store.UpdateJob(context.Background(), job.ID,
						jobentity.FailUpdater("too late", ""))
					Expect(err).To(HaveOccurred())
					Expect(markers.Is(err, jobentity.AlreadyFinalizedMark)).To(BeTrue())

					By("checking that the job stayed completed")
					fetched, err := store.GetJob(context.Background(), job.ID)
					Expect(err).NotTo(HaveOccurred())
					Expect(fetched.Status).To(Equal(jobentity.StatusCompleted))
					Expect(fetched.StemPaths).To(Equal(stemPaths))
					Expect(fetched.ErrorMessage).To(BeEmpty())
				})
			})
		})
	}
})

// Dynamo guards its read-modify-write with a conditional put on the status
// the job had when it was read. The other backends hold a lock or a
// transaction instead, so this conflict can only happen here.
var _ = Describe("Dynamo conditional writes", func() {
	var (
		store jobstorage.DynamoDB
		job   jobentity.Job
	)

	BeforeEach(func() {
		testing2.ResetDB(db)
		store = jobstorage.NewDynamoDB(db)

		job = jobentity.NewJob("mixtape.mp3")
		job.UploadPath = "/uploads/" + job.ID + "/mixtape.mp3"
		Expect(store.CreateJob(context.Background(), job)).To(Succeed())
	})

	It("rejects an update when the job changed underneath it", func() {
		stemPaths := map[string]string{
			jobentity.VocalsStem:        "output/" + job.ID + "/vocals.mp3",
			jobentity.AccompanimentStem: "output/" + job.ID + "/accompaniment.mp3",
		}

		// completes the job out from under the in-flight update
		sneakyUpdater := func(fetched jobentity.Job) (jobentity.Job, error) {
			err := store.UpdateJob(context.Background(), job.ID,
				jobentity.CompleteUpdater(stemPaths))
			Expect(err).NotTo(HaveOccurred())

			return jobentity.FailUpdater("the engine crashed", "")(fetched)
		}

		err := store.UpdateJob(context.Background(), job.ID, sneakyUpdater)
		Expect(err).To(HaveOccurred())
		Expect(markers.Is(err, jobstorage.UpdateConflict)).To(BeTrue())

		By("checking that the first write won")
		fetched, err := store.GetJob(context.Background(), job.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(fetched.Status).To(Equal(jobentity.StatusCompleted))
		Expect(fetched.StemPaths).To(Equal(stemPaths))
	})
})
