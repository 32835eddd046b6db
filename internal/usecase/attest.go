package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/p2e-inferno/chainstep/internal/domain"
)

// eip712DomainName and version must match the deployed EAS contract,
// otherwise signature recovery on-chain fails.
const (
	eip712DomainName    = "EAS"
	eip712DomainVersion = "1.2.0"
)

// DelegatedAttest creates gas-sponsored attestations: the user signs
// the attestation off-chain (EIP-712) and a sponsor wallet submits it
// on-chain, with the canonical attestation UID recovered from the
// receipt's Attested event.
type DelegatedAttest struct {
	client    ChainClient
	signer    TypedDataSigner
	codec     AttestationCodec
	contracts ContractAddresses
	log       *slog.Logger
}

// NewDelegatedAttest creates the delegated attestation use case.
func NewDelegatedAttest(
	client ChainClient,
	signer TypedDataSigner,
	codec AttestationCodec,
	contracts ContractAddresses,
	log *slog.Logger,
) *DelegatedAttest {
	return &DelegatedAttest{
		client:    client,
		signer:    signer,
		codec:     codec,
		contracts: contracts,
		log:       log.With("component", "attest"),
	}
}

// AttestParams describes the attestation to create.
type AttestParams struct {
	Schema         domain.UID
	Recipient      common.Address
	Data           []byte
	Revocable      bool
	ExpirationTime uint64
	// Nonce is the attester's EAS nonce; nil means zero (fresh signer).
	Nonce *big.Int
	// Deadline is the signature expiry; zero defaults to one hour out.
	Deadline uint64
	// Sponsor names the configured wallet that pays for submission.
	Sponsor string
}

// AttestOutcome is filled in by the confirm step once the attestation
// is on-chain.
type AttestOutcome struct {
	UID       domain.UID
	SchemaUID domain.UID
	Attester  common.Address
	TxHash    common.Hash
	TxURL     string
}

// Prepare builds and signs the EIP-712 delegated attestation request.
func (u *DelegatedAttest) Prepare(params AttestParams) (*domain.DelegatedAttestation, error) {
	if u.contracts.EAS == (common.Address{}) {
		return nil, fmt.Errorf("no EAS contract configured for chain %d", u.client.ChainID())
	}
	if params.Schema.IsZero() {
		return nil, fmt.Errorf("schema UID is required")
	}

	deadline := params.Deadline
	if deadline == 0 {
		deadline = uint64(time.Now().Add(time.Hour).Unix())
	}
	nonce := params.Nonce
	if nonce == nil {
		nonce = big.NewInt(0)
	}

	att := &domain.DelegatedAttestation{
		Request: domain.AttestationRequest{
			Schema:         params.Schema,
			Recipient:      params.Recipient,
			Data:           params.Data,
			ExpirationTime: params.ExpirationTime,
			Revocable:      params.Revocable,
			Value:          big.NewInt(0),
		},
		Attester: u.signer.Address(),
		Deadline: deadline,
	}

	typedData := u.attestTypedData(&att.Request, nonce, deadline)
	signature, err := u.signer.SignTypedData(typedData)
	if err != nil {
		return nil, fmt.Errorf("failed to sign attestation: %w", err)
	}
	att.Signature = signature

	u.log.Debug("attestation signed",
		"schema", att.Request.Schema.Hex(),
		"attester", att.Attester.Hex())
	return att, nil
}

// BuildFlow returns the sign → submit → confirm step sequence. The
// returned outcome is populated by the confirm step.
func (u *DelegatedAttest) BuildFlow(params AttestParams) (domain.Steps, *AttestOutcome) {
	outcome := &AttestOutcome{}

	var att *domain.DelegatedAttestation
	var submitted *domain.TxResult

	sign := domain.NewStep(
		"Sign attestation",
		func(ctx context.Context) (*domain.TxResult, error) {
			prepared, err := u.Prepare(params)
			if err != nil {
				return nil, err
			}
			att = prepared
			return nil, nil
		},
	)
	sign.Description = "Sign the attestation off-chain with your wallet"

	submit := domain.NewStep(
		"Submit attestation",
		func(ctx context.Context) (*domain.TxResult, error) {
			calldata, err := u.codec.EncodeAttestByDelegation(att)
			if err != nil {
				return nil, fmt.Errorf("failed to encode attestation: %w", err)
			}
			result, err := u.client.SubmitCall(ctx, params.Sponsor, u.contracts.EAS, calldata, nil)
			if err != nil {
				return nil, err
			}
			submitted = result
			return &domain.TxResult{Hash: result.Hash, URL: result.URL}, nil
		},
	)
	submit.Description = "Submit through the sponsor wallet (gas-free for the signer)"

	confirm := domain.NewStep(
		"Confirm attestation",
		func(ctx context.Context) (*domain.TxResult, error) {
			if submitted == nil {
				return nil, fmt.Errorf("no attestation transaction to confirm")
			}
			if err := submitted.Confirm(ctx); err != nil {
				return nil, err
			}
			logs, err := u.client.ReceiptLogs(ctx, submitted.Hash)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch receipt logs: %w", err)
			}
			attested, err := u.codec.DecodeAttested(logs)
			if err != nil {
				return nil, err
			}
			outcome.UID = attested.UID
			outcome.SchemaUID = attested.SchemaUID
			outcome.Attester = attested.Attester
			outcome.TxHash = submitted.Hash
			outcome.TxURL = submitted.URL
			u.log.Debug("attestation confirmed", "uid", attested.UID.Hex())
			return &domain.TxResult{Hash: submitted.Hash, URL: submitted.URL}, nil
		},
	)
	confirm.Description = "Wait for inclusion and recover the attestation UID"

	return domain.Steps{sign, submit, confirm}, outcome
}

// attestTypedData builds the EIP-712 payload the EAS contract verifies
// for delegated attestations.
func (u *DelegatedAttest) attestTypedData(req *domain.AttestationRequest, nonce *big.Int, deadline uint64) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"Attest": {
				{Name: "schema", Type: "bytes32"},
				{Name: "recipient", Type: "address"},
				{Name: "expirationTime", Type: "uint64"},
				{Name: "revocable", Type: "bool"},
				{Name: "refUID", Type: "bytes32"},
				{Name: "data", Type: "bytes"},
				{Name: "value", Type: "uint256"},
				{Name: "nonce", Type: "uint256"},
				{Name: "deadline", Type: "uint64"},
			},
		},
		PrimaryType: "Attest",
		Domain: apitypes.TypedDataDomain{
			Name:              eip712DomainName,
			Version:           eip712DomainVersion,
			ChainId:           math.NewHexOrDecimal256(int64(u.client.ChainID())),
			VerifyingContract: u.contracts.EAS.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"schema":         hexutil.Encode(req.Schema[:]),
			"recipient":      req.Recipient.Hex(),
			"expirationTime": new(big.Int).SetUint64(req.ExpirationTime).String(),
			"revocable":      req.Revocable,
			"refUID":         hexutil.Encode(req.RefUID[:]),
			"data":           hexutil.Encode(req.Data),
			"value":          req.Value.String(),
			"nonce":          nonce.String(),
			"deadline":       new(big.Int).SetUint64(deadline).String(),
		},
	}
}
