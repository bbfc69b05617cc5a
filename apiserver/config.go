package main

import (
	"context"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/greenorbit/phaseout/apiserver/internal/audit"
	"github.com/greenorbit/phaseout/apiserver/internal/authx"
	authxMongodb "github.com/greenorbit/phaseout/apiserver/internal/authx/mongodb"
	authxREST "github.com/greenorbit/phaseout/apiserver/internal/authx/rest"
	"github.com/greenorbit/phaseout/apiserver/internal/datasets"
	datasetsMongodb "github.com/greenorbit/phaseout/apiserver/internal/datasets/mongodb"
	datasetsREST "github.com/greenorbit/phaseout/apiserver/internal/datasets/rest"
	"github.com/greenorbit/phaseout/apiserver/internal/lib/mongodb"
	"github.com/greenorbit/phaseout/apiserver/internal/lib/oidc"
	"github.com/greenorbit/phaseout/apiserver/internal/lib/queue/amqp"
	"github.com/greenorbit/phaseout/apiserver/internal/lib/restmachinery"
	"github.com/greenorbit/phaseout/apiserver/internal/lib/restmachinery/authn"
)

// apiConfig represents API server configuration details that don't belong to
// any one subsystem.
type apiConfig struct {
	// HashedIngestToken is a salted hash of the shared token that data-ingest
	// pipelines present when pushing dataset records.
	HashedIngestToken string `envconfig:"HASHED_INGEST_TOKEN" required:"true"`
}

func getAPIServerFromEnvironment(
	ctx context.Context,
	logger *zap.Logger,
) (restmachinery.Server, error) {
	apiCfg := apiConfig{}
	if err := envconfig.Process("", &apiCfg); err != nil {
		return nil, errors.Wrap(
			err,
			"error getting API server configuration from environment",
		)
	}

	// API server config
	config, err := restmachinery.GetConfigFromEnvironment()
	if err != nil {
		return nil, err
	}

	// Datastores
	database, err := mongodb.Database()
	if err != nil {
		return nil, err
	}
	profilesStore, err := authxMongodb.NewProfilesStore(database)
	if err != nil {
		return nil, err
	}
	countryInfoStore, err := datasetsMongodb.NewCountryInfoStore(database)
	if err != nil {
		return nil, err
	}
	costVariablesStore, err := datasetsMongodb.NewCostVariablesStore(database)
	if err != nil {
		return nil, err
	}
	benefitVariablesStore, err :=
		datasetsMongodb.NewBenefitVariablesStore(database)
	if err != nil {
		return nil, err
	}
	alignmentDataStore, err := datasetsMongodb.NewAlignmentDataStore(database)
	if err != nil {
		return nil, err
	}
	climateFinanceStore, err := datasetsMongodb.NewClimateFinanceStore(database)
	if err != nil {
		return nil, err
	}

	// Audit trail. The queue is an optional capability. Without one configured,
	// audit events are silently discarded.
	auditWriter := audit.NewNopWriter()
	queueWriterFactory, err := amqp.GetQueueWriterFactoryFromEnvironment()
	if err != nil {
		return nil, err
	}
	if queueWriterFactory != nil {
		auditWriter, err = audit.NewQueueBackedWriter(
			queueWriterFactory,
			func(ctx context.Context) string {
				switch principal := authx.PrincipalFromContext(ctx).(type) {
				case *authx.Ingester:
					return "ingest"
				case *authx.Subject:
					return principal.ID
				default:
					return "anonymous"
				}
			},
			logger,
		)
		if err != nil {
			return nil, err
		}
	}

	// Services
	profilesService := authx.NewProfilesService(profilesStore, auditWriter)
	countryInfoService :=
		datasets.NewCountryInfoService(countryInfoStore, auditWriter)
	costVariablesService :=
		datasets.NewCostVariablesService(costVariablesStore, auditWriter)
	benefitVariablesService :=
		datasets.NewBenefitVariablesService(benefitVariablesStore, auditWriter)
	alignmentDataService :=
		datasets.NewAlignmentDataService(alignmentDataStore, auditWriter)
	climateFinanceService :=
		datasets.NewClimateFinanceService(climateFinanceStore, auditWriter)

	// Authentication
	tokenVerifier, err := oidc.GetTokenVerifierFromEnvironment(ctx)
	if err != nil {
		return nil, err
	}
	baseEndpoints := &restmachinery.BaseEndpoints{
		TokenAuthFilter: authn.NewTokenAuthFilter(
			tokenVerifier,
			profilesStore.Get,
			apiCfg.HashedIngestToken,
		),
		Logger: logger,
	}

	return restmachinery.NewServer(
		config,
		baseEndpoints,
		[]restmachinery.Endpoints{
			&authxREST.ProfilesEndpoints{
				BaseEndpoints: baseEndpoints,
				ProfileSchemaLoader: gojsonschema.NewReferenceLoader(
					"file:///phaseout/schemas/profile.json",
				),
				Service: profilesService,
			},
			&datasetsREST.CountryInfoEndpoints{
				BaseEndpoints: baseEndpoints,
				CountryInfoSchemaLoader: gojsonschema.NewReferenceLoader(
					"file:///phaseout/schemas/country-info.json",
				),
				Service: countryInfoService,
			},
			&datasetsREST.CostVariablesEndpoints{
				BaseEndpoints: baseEndpoints,
				CostVariablesSchemaLoader: gojsonschema.NewReferenceLoader(
					"file:///phaseout/schemas/cost-variables.json",
				),
				Service: costVariablesService,
			},
			&datasetsREST.BenefitVariablesEndpoints{
				BaseEndpoints: baseEndpoints,
				BenefitVariablesSchemaLoader: gojsonschema.NewReferenceLoader(
					"file:///phaseout/schemas/benefit-variables.json",
				),
				Service: benefitVariablesService,
			},
			&datasetsREST.AlignmentDataEndpoints{
				BaseEndpoints: baseEndpoints,
				AlignmentDatumSchemaLoader: gojsonschema.NewReferenceLoader(
					"file:///phaseout/schemas/alignment-datum.json",
				),
				Service: alignmentDataService,
			},
			&datasetsREST.ClimateFinanceEndpoints{
				BaseEndpoints: baseEndpoints,
				ClimateFinanceFlowSchemaLoader: gojsonschema.NewReferenceLoader(
					"file:///phaseout/schemas/climate-finance-flow.json",
				),
				Service: climateFinanceService,
			},
		},
	), nil
}
