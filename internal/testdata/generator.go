package testdata

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jask/agentwallet/internal/backend"
)

// Fixture bundles reference data and payments served by the sample backend.
type Fixture struct {
	Payments []backend.Payment
	Clients  []backend.ClientRef
	Markets  []backend.Market
}

var (
	agentNames  = []string{"Aline Uwase", "Jean Bosco", "Grace Mukamana", "Eric Habimana", "Diane Ingabire"}
	clientNames = []string{"Kimironko Traders", "Nyabugogo Wholesale", "Remera Fresh", "Kacyiru Mart"}
	marketNames = []string{"Kimironko", "Nyabugogo", "Remera"}
)

// Generate creates n pending payments with deterministic content for the given seed.
func Generate(n int, seed int64) Fixture {
	rnd := rand.New(rand.NewSource(seed))

	var f Fixture
	for i, name := range marketNames {
		f.Markets = append(f.Markets, backend.Market{ID: fmt.Sprintf("m%d", i+1), Name: name})
	}
	for i, name := range clientNames {
		f.Clients = append(f.Clients, backend.ClientRef{
			ID:    uuid.NewSHA1(uuid.NameSpaceOID, []byte("client:"+name)).String(),
			Names: name,
			Phone: fmt.Sprintf("+25078%07d", i*1111),
		})
	}

	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		agent := agentNames[rnd.Intn(len(agentNames))]
		client := f.Clients[rnd.Intn(len(f.Clients))]
		p := backend.Payment{
			ID:          int64(i + 1),
			Amount:      decimal.NewFromInt(int64(rnd.Intn(400)+10) * 500),
			Currency:    "RWF",
			AgentID:     uuid.NewSHA1(uuid.NameSpaceOID, []byte("agent:"+agent)).String(),
			AgentNames:  agent,
			ClientID:    client.ID,
			ClientNames: client.Names,
			MarketID:    f.Markets[rnd.Intn(len(f.Markets))].ID,
			Status:      "PENDING",
			CreatedAt:   base.Add(time.Duration(i) * 37 * time.Minute),
		}
		if rnd.Intn(4) == 0 {
			proof := fmt.Sprintf("proofs/%d.jpg", p.ID)
			p.PaymentProof = &proof
		}
		f.Payments = append(f.Payments, p)
	}
	return f
}
