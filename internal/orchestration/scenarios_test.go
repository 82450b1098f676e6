package orchestration_test

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-logr/zapr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/imamik/rtctl/internal/config"
	"github.com/imamik/rtctl/internal/orchestration"
	"github.com/imamik/rtctl/internal/platform/contrail"
	"github.com/imamik/rtctl/internal/platform/contrail/fake"
	"github.com/imamik/rtctl/internal/routetarget"
)

func newOrchestrator(store *fake.Store) *orchestration.Orchestrator {
	log := zapr.NewLogger(zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(GinkgoWriter),
		zapcore.DebugLevel,
	)))
	client := contrail.NewRealClient(store.URL(), contrail.Credentials{Username: "admin", Password: "secret"},
		contrail.WithTimeouts(config.TestTimeouts()), contrail.WithLogger(log))
	return orchestration.New(client,
		orchestration.WithAllocator(routetarget.NewAllocator(routetarget.NoJitter)),
		orchestration.WithSettleDelay(0),
		orchestration.WithLogger(log))
}

var _ = Describe("Connectivity between two networks", func() {
	var (
		ctx   context.Context
		store *fake.Store
		orch  *orchestration.Orchestrator
		a, b  string
		req   orchestration.RoutingRequest
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = fake.NewStore(GinkgoT())
		a = store.AddNetwork([]string{"default-domain", "demo", "A"}, "")
		b = store.AddNetwork([]string{"default-domain", "demo", "B"}, "")
		orch = newOrchestrator(store)
		req = orchestration.RoutingRequest{Left: "default-domain:demo:A", Right: "default-domain:demo:B", Target: "64512:500"}
	})

	Context("when both networks only have their primary instance and no target exists", func() {
		It("links both primaries and later unlinks them and reclaims the target", func() {
			By("enabling routing")
			res, err := orch.Enable(ctx, req)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.State).To(Equal(orchestration.StateDone))
			Expect(res.TargetCreated).To(BeTrue())
			Expect(store.InstanceTargets(store.PrimaryInstance(a))).To(Equal(map[string]string{"target:64512:500": ""}))
			Expect(store.InstanceTargets(store.PrimaryInstance(b))).To(Equal(map[string]string{"target:64512:500": ""}))

			By("disabling routing")
			res, err = orch.Disable(ctx, req)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Warnings).To(BeEmpty())
			Expect(res.TargetDeleted).To(BeTrue())
			Expect(store.InstanceTargets(store.PrimaryInstance(a))).To(BeEmpty())
			Expect(store.InstanceTargets(store.PrimaryInstance(b))).To(BeEmpty())
			Expect(store.TargetID("target:64512:500")).To(BeEmpty())

			By("keeping both primary instances")
			Expect(store.HasInstance(store.PrimaryInstance(a))).To(BeTrue())
			Expect(store.HasInstance(store.PrimaryInstance(b))).To(BeTrue())
		})

		It("converges when enable runs twice", func() {
			_, err := orch.Enable(ctx, req)
			Expect(err).NotTo(HaveOccurred())
			first := store.InstanceTargets(store.PrimaryInstance(a))

			res, err := orch.Enable(ctx, req)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Sides).To(HaveEach(HaveField("Outcome", orchestration.OutcomeAlreadyLinked)))
			Expect(store.InstanceTargets(store.PrimaryInstance(a))).To(Equal(first))
			Expect(store.TargetCount()).To(Equal(1))
		})
	})

	Context("when the target is associated with neither network", func() {
		BeforeEach(func() {
			store.AddRouteTarget("target:64512:500")
			store.ResetCalls()
		})

		It("reports both associations as already absent", func() {
			res, err := orch.Disable(ctx, req)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Sides).To(HaveLen(2))
			Expect(res.Sides).To(HaveEach(HaveField("Outcome", orchestration.OutcomeAlreadyAbsent)))
			Expect(res.Sides).To(HaveEach(HaveField("InstanceDeleted", BeFalse())))
			Expect(store.CountCalls(http.MethodPost, "/ref-update")).To(BeZero())
			Expect(store.CountCalls(http.MethodDelete, "/routing-instance")).To(BeZero())
		})
	})

	Context("when an invalid direction is given", func() {
		It("fails before any store call", func() {
			store.ResetCalls()
			_, err := orch.AddRouteTarget(ctx, orchestration.RouteTargetRequest{
				Network: "default-domain:demo:A", Target: "64512:500", Direction: "north",
			})
			Expect(err).To(MatchError(contrail.ErrInvalidArgument))
			Expect(store.CallCount()).To(BeZero())
		})
	})

	Context("when two invocations race on the same new target", func() {
		It("both end up on a single route target", func() {
			other := newOrchestrator(store)
			var wg sync.WaitGroup
			errs := make([]error, 2)
			for i, o := range []*orchestration.Orchestrator{orch, other} {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					_, errs[i] = o.Enable(ctx, req)
				}()
			}
			wg.Wait()

			Expect(errs).To(HaveEach(Not(HaveOccurred())))
			Expect(store.TargetCount()).To(Equal(1))
			Expect(store.InstanceTargets(store.PrimaryInstance(a))).To(HaveLen(1))
			Expect(store.InstanceTargets(store.PrimaryInstance(b))).To(HaveLen(1))
		})
	})

	Context("when the store fails between the two sides", func() {
		It("keeps the left association and converges on re-run", func() {
			_, err := orch.Enable(ctx, orchestration.RoutingRequest{Left: req.Left, Right: req.Left, Target: "1:1"})
			Expect(err).NotTo(HaveOccurred())
			store.ResetCalls()

			// The left side is already linked, so the first ref-update is the right side's.
			store.FailNext(http.MethodPost, "/ref-update", http.StatusInternalServerError, "backend down")
			res, err := orch.Enable(ctx, orchestration.RoutingRequest{Left: req.Left, Right: req.Right, Target: "1:1"})
			Expect(err).To(MatchError(contrail.ErrStoreUnavailable))
			Expect(res.State).To(Equal(orchestration.StateFailed))
			Expect(res.Reached).To(Equal(orchestration.StateLeftLinked))

			res, err = orch.Enable(ctx, orchestration.RoutingRequest{Left: req.Left, Right: req.Right, Target: "1:1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.State).To(Equal(orchestration.StateDone))
			Expect(store.InstanceTargets(store.PrimaryInstance(b))).To(HaveKey("target:1:1"))
		})
	})
})
