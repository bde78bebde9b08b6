package service

import (
	"context"

	"github.com/davranaff/coffee/internal/model"
	"github.com/davranaff/coffee/internal/sqlerr"
)

const defaultCompanyName = "Coffee Shop"

type InfoService struct {
	info InfoStore
}

func NewInfoService(info InfoStore) *InfoService {
	return &InfoService{info: info}
}

func (s *InfoService) ListLocations(ctx context.Context, req *model.ListLocationsRequest) ([]model.CoffeeShopLocation, error) {
	return s.info.ListActiveLocations(ctx, req.City)
}

func (s *InfoService) GetLocation(ctx context.Context, id int64) (*model.CoffeeShopLocation, error) {
	return s.info.GetLocation(ctx, id)
}

func (s *InfoService) CreateLocation(ctx context.Context, req *model.CreateLocationRequest) (*model.CoffeeShopLocation, error) {
	return s.info.CreateLocation(ctx, req)
}

func (s *InfoService) UpdateLocation(ctx context.Context, req *model.UpdateLocationRequest) (*model.CoffeeShopLocation, error) {
	return s.info.UpdateLocation(ctx, req)
}

// StaticMap returns every static entry as key -> value.
func (s *InfoService) StaticMap(ctx context.Context) (map[string]string, error) {
	entries, err := s.info.ListStaticInfo(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[e.Key] = e.Value
	}
	return out, nil
}

func (s *InfoService) GetStatic(ctx context.Context, key string) (*model.StaticInfo, error) {
	info, err := s.info.GetStaticInfo(ctx, key)
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return nil, notFound("Information with key '" + key + "' not found")
		}
		return nil, err
	}
	return info, nil
}

func (s *InfoService) CreateStatic(ctx context.Context, req *model.CreateStaticInfoRequest) (*model.StaticInfo, error) {
	_, err := s.info.GetStaticInfo(ctx, req.Key)
	switch {
	case err == nil:
		return nil, badRequestWithCode("Record with key '"+req.Key+"' already exists", "STATIC_INFO_ALREADY_EXISTS")
	case !sqlerr.IsNotFound(err):
		return nil, err
	}
	return s.info.CreateStaticInfo(ctx, req)
}

func (s *InfoService) UpdateStatic(ctx context.Context, req *model.UpdateStaticInfoRequest) (*model.StaticInfo, error) {
	info, err := s.info.UpdateStaticInfo(ctx, req)
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return nil, notFound("Information with key '" + req.Key + "' not found")
		}
		return nil, err
	}
	return info, nil
}

// UpsertStatic stores value under key whether or not it exists.
func (s *InfoService) UpsertStatic(ctx context.Context, req *model.CreateStaticInfoRequest) (*model.StaticInfo, error) {
	return s.info.UpsertStaticInfo(ctx, req)
}

// Company assembles the public company card from company_* and social_*
// static entries plus the active locations.
func (s *InfoService) Company(ctx context.Context) (*model.CompanyInfo, error) {
	values, err := s.StaticMap(ctx)
	if err != nil {
		return nil, err
	}

	locations, err := s.info.ListActiveLocations(ctx, "")
	if err != nil {
		return nil, err
	}
	if locations == nil {
		locations = []model.CoffeeShopLocation{}
	}

	name := values["company_name"]
	if name == "" {
		name = defaultCompanyName
	}

	return &model.CompanyInfo{
		Name:        name,
		Description: values["company_description"],
		Phone:       values["company_phone"],
		Email:       values["company_email"],
		Website:     values["company_website"],
		SocialMedia: model.SocialMedia{
			Facebook:  values["social_facebook"],
			Instagram: values["social_instagram"],
			Twitter:   values["social_twitter"],
		},
		Locations: locations,
	}, nil
}
